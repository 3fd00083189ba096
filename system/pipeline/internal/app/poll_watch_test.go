package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"msifactory/system/pipeline/internal/model"
	"msifactory/system/pipeline/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPollOnce_ColdStart 首次轮询：无跟踪记录时单个候选产生一个下载事件并落轮询时间
func TestPollOnce_ColdStart(t *testing.T) {
	var requestedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[
			{"uri":"/billing-1.2.3.zip","size":2048,"folder":false},
			{"uri":"/subdir","size":0,"folder":true},
			{"uri":"/readme.txt","size":10,"folder":false}
		]}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	a.pollOnce(ctx, &service.PollTarget{Component: component, Branch: branch})

	assert.Equal(t, "/api/storage/com/acme/billing/snapshots/develop", requestedPath, "查询路径必须带组件仓库基础路径")

	require.Len(t, a.downloadCh, 1, "单个归档候选应恰好入队一个下载事件")
	event := <-a.downloadCh
	assert.Equal(t, "billing-1.2.3.zip", event.Descriptor.FileName)
	assert.Equal(t, component.ID, event.Component.ID)

	tracking, err := a.TrackingSvc.Get(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	require.NotNil(t, tracking, "轮询后必须存在跟踪记录")
	require.NotNil(t, tracking.LastPollAt)
	assert.Equal(t, model.StageStatusPending, tracking.DownloadStatus)
}

// TestPollOnce_SkipsKnownBuild 已记录的构建不再重复入队
func TestPollOnce_SkipsKnownBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"files":[{"uri":"/billing-1.2.3.zip","size":2048,"folder":false}]}`))
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	require.NoError(t, a.TrackingSvc.RecordSuccess(ctx, &model.BuildHistoryRecord{
		ComponentID: component.ID,
		BranchID:    branch.ID,
		BuildID:     "billing-1.2.3.zip",
	}))

	a.pollOnce(ctx, &service.PollTarget{Component: component, Branch: branch})

	assert.Empty(t, a.downloadCh, "同一构建不应重复入队")
}

// TestPollOnce_QueryFailure 仓库查询失败只刷新轮询时间，等待下一轮
func TestPollOnce_QueryFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	a := newTestApp(t, server.URL)
	component, branch := seedTarget(t, a, "com/acme/billing")
	ctx := context.Background()

	a.pollOnce(ctx, &service.PollTarget{Component: component, Branch: branch})

	assert.Empty(t, a.downloadCh)
	tracking, err := a.TrackingSvc.Get(ctx, component.ID, branch.ID)
	require.NoError(t, err)
	require.NotNil(t, tracking)
	assert.NotNil(t, tracking.LastPollAt)
}
