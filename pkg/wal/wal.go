package wal

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"sync"
)

// rw-r--r-- 擁有者讀寫，其他人唯讀
const fileModeLog fs.FileMode = 0644

// WAL 是一個 JSON lines 格式的追加日誌
// 每筆紀錄寫入後立即 fsync，程序重啟後可用 ReadAll 依序重放
type WAL struct {
	file *os.File
	mu   sync.Mutex
}

// NewWAL 開啟或建立日誌檔
// O_APPEND: 每次寫入自動跳到檔尾
// O_CREATE: 檔案不存在則建立
func NewWAL(path string) (*WAL, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, fileModeLog)
	if err != nil {
		return nil, err
	}
	return &WAL{file: file}, nil
}

// Write 追加一筆紀錄並刷入硬碟
// 回傳成功即代表紀錄已落地
func (w *WAL) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := json.NewEncoder(w.file).Encode(v); err != nil {
		return err
	}
	return w.file.Sync()
}

// Flush 強制把作業系統緩衝刷入硬碟
func (w *WAL) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// ReadAll 從頭讀取所有紀錄，逐筆交給 callback
// 逐筆處理可避免一次把整個檔案載入記憶體
func (w *WAL) ReadAll(callback func(jsonRaw []byte) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(0, io.SeekStart); err != nil {
		return err
	}

	decoder := json.NewDecoder(w.file)
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
	return nil
}

// Close 關閉日誌檔
func (w *WAL) Close() error {
	return w.file.Close()
}
