package utils

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// 常见中文错误信息映射
var customErrorMessages = map[string]string{
	"required": "不能为空",
	"min":      "长度必须至少为%s",
	"max":      "长度不能超过%s",
	"oneof":    "必须是[%s]中的一个", // 这个会在registerCustomTranslation中特殊处理
	"gt":       "必须大于%s",
	"gte":      "必须大于或等于%s",
	"lt":       "必须小于%s",
	"lte":      "必须小于或等于%s",
	"url":      "必须是有效的URL",
	"alphanum": "只能包含字母和数字",
}

var (
	validate     *validator.Validate
	translator   ut.Translator
	validateOnce sync.Once
)

// GetValidator 获取全局验证器实例
func GetValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate, translator = NewValidator()
	})
	return validate, translator
}

// Validate 验证结构体并返回中文错误信息
func Validate(data interface{}) (string, error) {
	v, trans := GetValidator()
	return ValidateStruct(v, trans, data)
}

// IsValid 检查结构体是否有效，返回是否有效及错误信息
func IsValid(data interface{}) (bool, string) {
	errMsg, err := Validate(data)
	if err != nil {
		return false, errMsg
	}
	return true, ""
}

// NewValidator 创建一个支持中文错误信息的验证器
func NewValidator() (*validator.Validate, ut.Translator) {
	// 创建验证器实例
	v := validator.New()

	// 注册函数，获取struct字段中的中文标签
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("comment"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return fld.Name
		}
		return name
	})

	// 创建中文翻译器
	zhTrans := zh.New()
	uni := ut.New(zhTrans, zhTrans)
	trans, _ := uni.GetTranslator("zh")

	// 注册默认的中文翻译器
	zh_translations.RegisterDefaultTranslations(v, trans)

	// 注册自定义的错误信息
	for tag, msg := range customErrorMessages {
		registerCustomTranslation(v, trans, tag, msg)
	}

	return v, trans
}

// 注册自定义翻译
func registerCustomTranslation(v *validator.Validate, trans ut.Translator, tag string, message string) {
	v.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
		return ut.Add(tag, message, true)
	}, func(ut ut.Translator, fe validator.FieldError) string {
		// 根据不同的验证规则处理参数
		switch tag {
		case "oneof":
			return fe.Field() + "必须是[" + fe.Param() + "]中的一个"
		case "min", "max", "gt", "gte", "lt", "lte":
			// 这些规则需要参数替换
			t, _ := ut.T(fe.Tag(), fe.Field(), fe.Param())
			return t
		default:
			// 其他规则直接使用字段名
			return fe.Field() + message
		}
	})
}

// ValidateStruct 验证结构体并返回中文错误信息
func ValidateStruct(v *validator.Validate, trans ut.Translator, s interface{}) (string, error) {
	err := v.Struct(s)
	if err == nil {
		return "", nil
	}

	errs := err.(validator.ValidationErrors)
	var errMessages []string
	for _, e := range errs {
		errMessages = append(errMessages, e.Translate(trans))
	}

	return strings.Join(errMessages, "; "), err
}
