package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"msifactory/system/pipeline/internal/model"
)

// InvokeCompiler 调用外部打包编译器生成安装包
// 成功判定：退出码为 0 且产出文件存在且非空；失败时返回完整的进程输出供诊断
func (a *App) InvokeCompiler(ctx context.Context, component *model.Component, manifestPath, fileListPath, outputPath string) (string, error) {
	timeout := time.Duration(a.Cfg.BuildTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{manifestPath, fileListPath, "-out", outputPath}
	for _, ext := range a.Cfg.Extensions[string(component.Type)] {
		args = append(args, "-ext", ext)
	}

	cmd := exec.CommandContext(ctx, a.Cfg.CompilerPath, args...)
	output, err := cmd.CombinedOutput()
	combined := string(output)

	if ctx.Err() == context.DeadlineExceeded {
		return combined, fmt.Errorf("编译器执行超时(%s)", timeout)
	}
	if err != nil {
		return combined, fmt.Errorf("编译器执行失败: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return combined, fmt.Errorf("编译器退出正常但产出文件缺失: %w", err)
	}
	if info.Size() == 0 {
		return combined, fmt.Errorf("编译器退出正常但产出文件为空: %s", outputPath)
	}
	return combined, nil
}
