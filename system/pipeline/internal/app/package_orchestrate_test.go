package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"msifactory/system/pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stageExtracted 构造一个已完成下载解压的构建现场
func stageExtracted(t *testing.T, a *App, componentID, branchID int64, buildID string) string {
	t.Helper()
	extractPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(extractPath, "app.conf"), []byte("endpoint=${endpoint}\n"), 0o644))
	require.NoError(t, a.TrackingSvc.RecordSuccess(context.Background(), &model.BuildHistoryRecord{
		ComponentID: componentID,
		BranchID:    branchID,
		BuildID:     buildID,
		ExtractPath: extractPath,
		Checksum:    "abc123",
	}))
	return extractPath
}

// writeStubCompiler 生成一个按产出路径决定成败的编译器脚本
// 产出路径含 -bad.msi 时失败退出，其余情况写出非空产物
func writeStubCompiler(t *testing.T) string {
	t.Helper()
	script := filepath.Join(t.TempDir(), "stubbuild.sh")
	content := `#!/bin/sh
out=""
prev=""
for arg in "$@"; do
  if [ "$prev" = "-out" ]; then out="$arg"; fi
  prev="$arg"
done
case "$out" in
*-bad.msi) echo "stub compiler failure" >&2; exit 1 ;;
esac
mkdir -p "$(dirname "$out")"
printf 'msi' > "$out"
`
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script
}

// TestTriggerPackaging_RejectsWithoutExtraction 解压未完成的构建在创建任务前被拒绝
func TestTriggerPackaging_RejectsWithoutExtraction(t *testing.T) {
	a := newTestApp(t, "")
	component, branch := seedTarget(t, a, "com/acme/billing")
	seedEnvironment(t, a, component.ID, "qa", nil)
	ctx := context.Background()

	// 无任何跟踪记录
	jobs, err := a.TriggerPackaging(ctx, component.ID, branch.ID, "tester")
	require.Error(t, err)
	assert.Nil(t, jobs)

	// 下载失败后解压仍是 pending
	require.NoError(t, a.TrackingSvc.RecordFailure(ctx, component.ID, branch.ID, "billing-1.0.0.zip", "download", assert.AnError))
	jobs, err = a.TriggerPackaging(ctx, component.ID, branch.ID, "tester")
	require.Error(t, err)
	assert.Nil(t, jobs)

	remaining, err := a.PackageJobSvc.ListByComponent(ctx, component.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, remaining, "被拒绝的触发不应留下任何任务记录")
}

// TestRunPackagingJob_StaleBuildFails 任务排队期间构建被覆盖时任务失败且不执行编译
func TestRunPackagingJob_StaleBuildFails(t *testing.T) {
	a := newTestApp(t, "")
	a.Cfg.CompilerPath = "/nonexistent/compiler"
	component, branch := seedTarget(t, a, "com/acme/billing")
	env := seedEnvironment(t, a, component.ID, "qa", nil)
	ctx := context.Background()

	// 新构建在任务创建之后覆盖了解压目录
	stageExtracted(t, a, component.ID, branch.ID, "billing-2.0.0.zip")

	job := &model.PackageJob{
		ComponentID:   component.ID,
		BranchID:      branch.ID,
		EnvironmentID: env.ID,
		BuildID:       "billing-1.0.0.zip",
		Environment:   env.Name,
		RequestedBy:   "tester",
	}
	require.NoError(t, a.PackageJobSvc.Create(ctx, job))

	a.runPackagingJob(ctx, component, branch, "billing-1.0.0.zip", "1.0.0.1", env, job)

	reloaded, err := a.PackageJobSvc.FindByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PackageJobStatusFailed, reloaded.Status)
	assert.Contains(t, reloaded.ErrorMessage, "覆盖")
	assert.Empty(t, reloaded.OutputPath)
}

// TestRunPackagingJobs_EnvFailureIsolation 单个环境编译失败不影响同批其他环境
func TestRunPackagingJobs_EnvFailureIsolation(t *testing.T) {
	a := newTestApp(t, "")
	a.Cfg.CompilerPath = writeStubCompiler(t)
	component, branch := seedTarget(t, a, "com/acme/billing")
	goodEnv := seedEnvironment(t, a, component.ID, "good", nil)
	badEnv := seedEnvironment(t, a, component.ID, "bad", nil)
	ctx := context.Background()

	buildID := "billing-1.0.0.zip"
	stageExtracted(t, a, component.ID, branch.ID, buildID)

	environments := []*model.EnvironmentConfig{goodEnv, badEnv}
	jobs := make([]*model.PackageJob, 0, len(environments))
	for _, env := range environments {
		job := &model.PackageJob{
			ComponentID:   component.ID,
			BranchID:      branch.ID,
			EnvironmentID: env.ID,
			BuildID:       buildID,
			Environment:   env.Name,
			RequestedBy:   "tester",
		}
		require.NoError(t, a.PackageJobSvc.Create(ctx, job))
		jobs = append(jobs, job)
	}

	a.runPackagingJobs(component, branch, buildID, "1.0.0.1", environments, jobs)

	goodJob, err := a.PackageJobSvc.FindByID(ctx, jobs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.PackageJobStatusSucceeded, goodJob.Status)
	assert.FileExists(t, goodJob.OutputPath)

	badJob, err := a.PackageJobSvc.FindByID(ctx, jobs[1].ID)
	require.NoError(t, err)
	assert.Equal(t, model.PackageJobStatusFailed, badJob.Status)
	assert.Contains(t, badJob.ErrorMessage, "stub compiler failure")
}
