package app

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"

	"msifactory/pkg/utils"
	"msifactory/system/pipeline/internal/model"

	"github.com/google/uuid"
)

// ManifestVars 安装清单模板变量
type ManifestVars struct {
	ProductName string
	DisplayName string
	Version     string
	Environment string
	InstallPath string
	ServiceName string
	ProductCode string
}

// FileEntry 文件清单中的一个可安装条目
type FileEntry struct {
	ID     string
	Source string
	Target string
}

// 按组件类型区分的安装清单模板
// webapp 挂载到已有站点，site 注册独立站点，service 注册后台服务
const (
	manifestTemplateWebApp = `<Product Name="{{.ProductName}}" Version="{{.Version}}" Code="{{.ProductCode}}">
  <Display>{{.DisplayName}}</Display>
  <Environment>{{.Environment}}</Environment>
  <InstallDir Path="{{.InstallPath}}" />
  <WebApplication Site="{{.ServiceName}}" VirtualDir="{{.ProductName}}" />
  <FileManifest Source="files.xml" />
</Product>
`
	manifestTemplateSite = `<Product Name="{{.ProductName}}" Version="{{.Version}}" Code="{{.ProductCode}}">
  <Display>{{.DisplayName}}</Display>
  <Environment>{{.Environment}}</Environment>
  <InstallDir Path="{{.InstallPath}}" />
  <WebSite Name="{{.ServiceName}}" Root="{{.InstallPath}}" />
  <FileManifest Source="files.xml" />
</Product>
`
	manifestTemplateService = `<Product Name="{{.ProductName}}" Version="{{.Version}}" Code="{{.ProductCode}}">
  <Display>{{.DisplayName}}</Display>
  <Environment>{{.Environment}}</Environment>
  <InstallDir Path="{{.InstallPath}}" />
  <WindowsService Name="{{.ServiceName}}" Start="auto" />
  <FileManifest Source="files.xml" />
</Product>
`
	fileManifestTemplate = `<Files>
{{- range .}}
  <File Id="{{.ID}}" Source="{{.Source}}" Target="{{.Target}}" />
{{- end}}
</Files>
`
)

var manifestTemplates = map[model.ComponentType]*template.Template{
	model.ComponentTypeWebApp:  template.Must(template.New("webapp").Parse(manifestTemplateWebApp)),
	model.ComponentTypeSite:    template.Must(template.New("site").Parse(manifestTemplateSite)),
	model.ComponentTypeService: template.Must(template.New("service").Parse(manifestTemplateService)),
}

var fileManifestTmpl = template.Must(template.New("files").Parse(fileManifestTemplate))

// RenderManifest 按组件类型渲染安装清单文本
func RenderManifest(componentType model.ComponentType, vars ManifestVars) (string, error) {
	tmpl, ok := manifestTemplates[componentType]
	if !ok {
		tmpl = manifestTemplates[model.ComponentTypeService]
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("渲染安装清单失败: %w", err)
	}
	return buf.String(), nil
}

// EnumerateFiles 枚举工作副本下的全部文件并为每个文件生成唯一标识
// 任何文件都不允许被跳过；单次生成内的标识保证不重复
func EnumerateFiles(workDir string) ([]FileEntry, error) {
	seen := make(map[string]struct{})
	var entries []FileEntry

	err := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return fmt.Errorf("计算相对路径失败: %w", err)
		}

		id := uuid.NewString()
		for {
			if _, dup := seen[id]; !dup {
				break
			}
			id = uuid.NewString()
		}
		seen[id] = struct{}{}

		entries = append(entries, FileEntry{
			ID:     id,
			Source: path,
			Target: filepath.ToSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("工作副本为空: %s", workDir)
	}
	return entries, nil
}

// GenerateSources 为 (组件, 环境) 生成安装清单和文件清单，返回两个文件的落盘路径
func (a *App) GenerateSources(component *model.Component, env *model.EnvironmentConfig, productVersion, workDir, sourceDir string) (string, string, error) {
	vars := ManifestVars{
		ProductName: component.Name,
		DisplayName: component.DisplayName,
		Version:     productVersion,
		Environment: env.Name,
		InstallPath: env.InstallPath,
		ServiceName: env.ServiceName,
		ProductCode: uuid.NewString(),
	}
	manifest, err := RenderManifest(component.Type, vars)
	if err != nil {
		return "", "", err
	}

	entries, err := EnumerateFiles(workDir)
	if err != nil {
		return "", "", err
	}
	var buf bytes.Buffer
	if err := fileManifestTmpl.Execute(&buf, entries); err != nil {
		return "", "", fmt.Errorf("渲染文件清单失败: %w", err)
	}

	manifestPath := filepath.Join(sourceDir, "product.xml")
	fileListPath := filepath.Join(sourceDir, "files.xml")
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return "", "", fmt.Errorf("创建清单目录失败: %w", err)
	}
	if _, err := utils.WriteStringToFile(manifestPath, manifest, 0); err != nil {
		return "", "", err
	}
	if _, err := utils.WriteStringToFile(fileListPath, buf.String(), 0); err != nil {
		return "", "", err
	}
	return manifestPath, fileListPath, nil
}
