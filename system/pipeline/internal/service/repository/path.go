package repository

import (
	"strings"
)

// 分支名到仓库区域的固定分类规则
const (
	areaFeature  = "feature-builds"
	areaRelease  = "release-candidates"
	areaHotfix   = "hotfixes"
	areaSnapshot = "snapshots/develop"
	areaStable   = "releases/stable"
	areaCustom   = "custom-builds"
)

// ResolveQueryPath 根据组件仓库基础路径和分支名解析仓库查询子路径
// 区域部分在基础路径下命名空间隔离，不同组件的同名分支互不干扰；
// pathPattern 非空时作为区域覆盖规则，优先于分类规则
func ResolveQueryPath(repositoryPath, branchName, pathPattern string) string {
	return joinPath(strings.Trim(strings.TrimSpace(repositoryPath), "/"), resolveArea(branchName, pathPattern))
}

// resolveArea 根据分支名解析仓库区域路径
func resolveArea(branchName, pathPattern string) string {
	if pattern := strings.TrimSpace(pathPattern); pattern != "" {
		return strings.Trim(pattern, "/")
	}

	name := strings.TrimSpace(branchName)
	switch {
	case strings.HasPrefix(name, "feature/"):
		return areaFeature + "/" + BranchSlug(name)
	case strings.HasPrefix(name, "release/"):
		return areaRelease + "/" + BranchSlug(name)
	case strings.HasPrefix(name, "hotfix/"):
		return areaHotfix + "/" + BranchSlug(name)
	case name == "develop":
		return areaSnapshot
	case name == "main" || name == "master":
		return areaStable
	default:
		return areaCustom + "/" + BranchSlug(name)
	}
}

// joinPath 拼接路径片段，忽略空片段
func joinPath(base, rest string) string {
	if base == "" {
		return rest
	}
	if rest == "" {
		return base
	}
	return base + "/" + rest
}

// BranchSlug 将分支名转成目录安全形式，斜杠替换为连字符
func BranchSlug(branchName string) string {
	return strings.ReplaceAll(strings.Trim(branchName, "/"), "/", "-")
}
