package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"msifactory/pkg/core/config"
	errorc "msifactory/pkg/core/err"
	"msifactory/pkg/core/logger"
	"msifactory/pkg/core/model/common"
	"msifactory/pkg/utils"

	"github.com/tidwall/gjson"
)

// ArtifactDescriptor 轮询发现的制品描述，临时值不落库
type ArtifactDescriptor struct {
	FileName     string
	DownloadURL  string
	Size         int64
	Checksum     string
	LastModified time.Time
}

// archiveSuffixes 参与构建的归档文件后缀
var archiveSuffixes = []string{".zip", ".tar.gz", ".tgz"}

// IsArchive 判断文件名是否为归档制品
func IsArchive(fileName string) bool {
	lower := strings.ToLower(fileName)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

// Client 制品仓库只读客户端
// 列表接口返回目录清单 JSON 或结构化查询结果，统一归一化为 ArtifactDescriptor
type Client struct {
	baseURL         string
	username        string
	password        string
	queryClient     *http.Client
	downloadTimeout time.Duration
	log             *logger.Log
	err             *errorc.ErrorBuilder
}

// NewClient 创建制品仓库客户端
func NewClient(cfg *config.RepositoryConfig, downloadTimeout time.Duration, log *logger.Log) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		queryClient: &http.Client{
			Timeout: time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		},
		downloadTimeout: downloadTimeout,
		log:             log.WithEntryName("RepositoryClient"),
		err:             errorc.NewErrorBuilder("RepositoryClient"),
	}
}

// List 查询指定子路径下的候选归档制品
func (c *Client) List(ctx context.Context, queryPath string) ([]*ArtifactDescriptor, error) {
	url := fmt.Sprintf("%s/api/storage/%s?list", c.baseURL, strings.Trim(queryPath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.err.New("构造仓库查询请求失败", err).Third()
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.queryClient.Do(req)
	if err != nil {
		return nil, c.err.New("仓库查询请求失败", err).Third()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.err.Quick(fmt.Sprintf("仓库查询返回非预期状态码: %d", resp.StatusCode), nil).Third()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.err.New("读取仓库响应失败", err).Third()
	}
	if !gjson.ValidBytes(body) {
		return nil, c.err.Quick("仓库响应不是有效的 JSON", nil).Third()
	}

	return c.normalize(body, queryPath), nil
}

// normalize 将目录清单或结构化查询响应归一化为制品描述列表
// 兼容三种负载形态：files（带 uri/size/lastModified）、children、results
func (c *Client) normalize(body []byte, queryPath string) []*ArtifactDescriptor {
	root := gjson.ParseBytes(body)
	basePath := strings.Trim(queryPath, "/")
	var list []*ArtifactDescriptor

	appendEntry := func(name string, size int64, checksum, modified, downloadURL string) {
		name = strings.TrimPrefix(name, "/")
		if name == "" || !IsArchive(name) {
			return
		}
		if downloadURL == "" {
			downloadURL = fmt.Sprintf("%s/%s/%s", c.baseURL, basePath, name)
		}
		descriptor := &ArtifactDescriptor{
			FileName:    filepath.Base(name),
			DownloadURL: downloadURL,
			Size:        size,
			Checksum:    checksum,
		}
		if modified != "" {
			if t, err := common.ParseFlexTime(modified); err == nil {
				descriptor.LastModified = t
			}
		}
		list = append(list, descriptor)
	}

	if files := root.Get("files"); files.IsArray() {
		files.ForEach(func(_, item gjson.Result) bool {
			if item.Get("folder").Bool() {
				return true
			}
			appendEntry(
				item.Get("uri").String(),
				item.Get("size").Int(),
				item.Get("sha2").String(),
				item.Get("lastModified").String(),
				"",
			)
			return true
		})
		return list
	}

	if children := root.Get("children"); children.IsArray() {
		children.ForEach(func(_, item gjson.Result) bool {
			if item.Get("folder").Bool() {
				return true
			}
			appendEntry(item.Get("uri").String(), item.Get("size").Int(), "", "", "")
			return true
		})
		return list
	}

	if results := root.Get("results"); results.IsArray() {
		results.ForEach(func(_, item gjson.Result) bool {
			appendEntry(
				item.Get("name").String(),
				item.Get("size").Int(),
				item.Get("sha256").String(),
				item.Get("modified").String(),
				item.Get("downloadUri").String(),
			)
			return true
		})
	}
	return list
}

// Download 下载制品并流式写入目标文件
// 非 2xx、超时或落盘字节数为零均视为失败，返回实际大小和 SHA256
func (c *Client) Download(ctx context.Context, downloadURL, destFile string) (int64, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return 0, "", c.err.New("构造下载请求失败", err).Third()
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, "", c.err.New("制品下载请求失败", err).Third()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, "", c.err.Quick(fmt.Sprintf("制品下载返回非预期状态码: %d", resp.StatusCode), nil).Third()
	}

	if err := os.MkdirAll(filepath.Dir(destFile), 0755); err != nil {
		return 0, "", c.err.New("创建下载目录失败", err).Third()
	}
	out, err := os.Create(destFile)
	if err != nil {
		return 0, "", c.err.New("创建下载文件失败", err).Third()
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(destFile)
		return 0, "", c.err.New("下载写盘失败", err).Third()
	}
	if closeErr != nil {
		os.Remove(destFile)
		return 0, "", c.err.New("关闭下载文件失败", closeErr).Third()
	}
	if written == 0 {
		os.Remove(destFile)
		return 0, "", c.err.Quick("下载内容为空", nil).Third()
	}

	checksum, err := utils.FileSHA256(destFile)
	if err != nil {
		return 0, "", c.err.New("计算下载文件校验和失败", err).Third()
	}
	return written, checksum, nil
}
