package app

import (
	"regexp"
)

// versionPattern 匹配文件名中第一个点分数字版本段，如 1.2.3.45
var versionPattern = regexp.MustCompile(`\d+(?:\.\d+)+`)

// ExtractBuildID 从制品文件名中提取第一个点分数字版本段
func ExtractBuildID(fileName string) (string, bool) {
	match := versionPattern.FindString(fileName)
	return match, match != ""
}

// IsNewer 判断候选制品是否比最近一次已知构建更新
// lastKnown 为空视为冷启动，任何候选都算新；
// 两边都能提取出版本段时按字符串字典序比较，否则退化为完整文件名的字典序比较。
// 注意：纯字典序下 "1.10" 小于 "1.9"，该历史行为被有意保留
func IsNewer(candidate, lastKnown string) bool {
	if lastKnown == "" {
		return true
	}
	if candidate == "" {
		return false
	}

	candidateVersion, okCandidate := ExtractBuildID(candidate)
	lastVersion, okLast := ExtractBuildID(lastKnown)
	if okCandidate && okLast {
		return candidateVersion > lastVersion
	}
	return candidate > lastKnown
}
