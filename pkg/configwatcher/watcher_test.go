package configwatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"learnpath_backend/internal/config"
)

func writeTestConfig(t *testing.T, dir, port string) string {
	t.Helper()
	content := fmt.Sprintf("server:\n  port: \"%s\"\n  mode: debug\njwt:\n  secret: test-secret\n  expire_hours: 1\n", port)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestWatchConfigReloadsOnEachWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeTestConfig(t, dir, "8080")

	old := debounceDelay
	debounceDelay = 50 * time.Millisecond
	defer func() { debounceDelay = old }()

	var fired int32
	go WatchConfig(path, nil, func(cfg interface{}) {
		if _, ok := cfg.(*config.Config); ok {
			atomic.AddInt32(&fired, 1)
		}
	})

	// 等 watcher 注册完成
	time.Sleep(200 * time.Millisecond)

	writeTestConfig(t, dir, "8081")
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 1
	}, 3*time.Second, 50*time.Millisecond, "第一次写入后未触发重载")

	// 触发过一次之后 timer 已经走完，再写一次必须还能触发
	writeTestConfig(t, dir, "8082")
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) >= 2
	}, 3*time.Second, 50*time.Millisecond, "第二次写入后未触发重载")
}
