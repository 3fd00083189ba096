package common

import (
	"fmt"
	"strings"
	"time"
)

// FlexTime 灵活的时间类型，兼容制品仓库返回的多种时间格式
type FlexTime struct {
	time.Time
}

var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999Z",
	"2006-01-02",
}

// UnmarshalJSON 自定义JSON反序列化，逐个尝试支持的时间格式
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), "\"")

	if str == "" || str == "null" {
		t.Time = time.Time{}
		return nil
	}

	var parseErr error
	for _, format := range timeFormats {
		parsed, err := time.Parse(format, str)
		if err == nil {
			t.Time = parsed
			return nil
		}
		parseErr = err
	}

	return fmt.Errorf("无法解析时间格式: %s, 错误: %v", str, parseErr)
}

// MarshalJSON 序列化为RFC3339格式
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("\"%s\"", t.Time.Format(time.RFC3339))), nil
}

// ParseFlexTime 解析任意受支持格式的时间字符串
func ParseFlexTime(str string) (time.Time, error) {
	var t FlexTime
	if err := t.UnmarshalJSON([]byte("\"" + str + "\"")); err != nil {
		return time.Time{}, err
	}
	return t.Time, nil
}

func (t FlexTime) String() string {
	if t.Time.IsZero() {
		return ""
	}
	return t.Time.Format("2006-01-02 15:04:05")
}
