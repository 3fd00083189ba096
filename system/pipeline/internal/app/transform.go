package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"msifactory/pkg/utils"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// textConfigSuffixes 参与占位符替换的文本配置文件后缀
var textConfigSuffixes = []string{".config", ".conf", ".ini", ".properties", ".xml", ".yml", ".yaml", ".txt"}

// TransformWorkingCopy 生成某环境的隔离工作副本并套用配置覆盖
// 始终在副本上修改，绝不触碰共享的解压目录；覆盖表为空时副本与源逐字节一致。
// 两种寻址方式：Section__Key 形式写入 JSON 配置的嵌套键，普通键做 ${key} 占位符文本替换。
// 重复应用同一覆盖表与应用一次结果相同
func TransformWorkingCopy(srcDir, workDir string, overrides map[string]interface{}) error {
	if err := utils.ClearDir(workDir); err != nil {
		return fmt.Errorf("清理工作副本目录失败: %w", err)
	}
	if err := utils.CopyDir(srcDir, workDir); err != nil {
		return fmt.Errorf("复制工作副本失败: %w", err)
	}
	if len(overrides) == 0 {
		return nil
	}

	return filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		lower := strings.ToLower(path)
		switch {
		case strings.HasSuffix(lower, ".json"):
			return applyJSONOverrides(path, overrides)
		case isTextConfig(lower):
			return applyPlaceholderOverrides(path, overrides)
		default:
			return nil
		}
	})
}

// isTextConfig 判断是否为文本配置文件
func isTextConfig(lowerPath string) bool {
	for _, suffix := range textConfigSuffixes {
		if strings.HasSuffix(lowerPath, suffix) {
			return true
		}
	}
	return false
}

// applyJSONOverrides 将 Section__Key 形式的覆盖键写入 JSON 文件的嵌套结构
// 只改写文件中已存在的键路径，避免把无关配置注入到每个 JSON 文件里
func applyJSONOverrides(path string, overrides map[string]interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if !gjson.ValidBytes(content) {
		return nil
	}

	changed := false
	for key, value := range overrides {
		keyPath := strings.ReplaceAll(key, "__", ".")
		if !gjson.GetBytes(content, keyPath).Exists() {
			continue
		}
		updated, err := sjson.SetBytes(content, keyPath, value)
		if err != nil {
			return fmt.Errorf("写入配置键 %s 失败: %w", keyPath, err)
		}
		content = updated
		changed = true
	}
	if !changed {
		return nil
	}

	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}
	return nil
}

// applyPlaceholderOverrides 在文本配置中把 ${key} 占位符替换为覆盖值
func applyPlaceholderOverrides(path string, overrides map[string]interface{}) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}

	text := string(content)
	changed := false
	for key, value := range overrides {
		placeholder := "${" + key + "}"
		if !strings.Contains(text, placeholder) {
			continue
		}
		text = strings.ReplaceAll(text, placeholder, fmt.Sprintf("%v", value))
		changed = true
	}
	if !changed {
		return nil
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("保存配置文件失败: %w", err)
	}
	return nil
}
