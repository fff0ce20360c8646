package wal

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Seq  int    `json:"seq"`
	Note string `json:"note"`
}

func TestWAL_WriteAndReadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(record{Seq: 1, Note: "first"}))
	require.NoError(t, w.Write(record{Seq: 2, Note: "second"}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	// 重新開啟後要能依寫入順序讀回
	w, err = NewWAL(path)
	require.NoError(t, err)
	defer w.Close()

	var got []record
	err = w.ReadAll(func(raw []byte) error {
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return err
		}
		got = append(got, r)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, record{Seq: 1, Note: "first"}, got[0])
	assert.Equal(t, record{Seq: 2, Note: "second"}, got[1])
}

func TestWAL_ReadAllEmpty(t *testing.T) {
	w, err := NewWAL(filepath.Join(t.TempDir(), "empty.log"))
	require.NoError(t, err)
	defer w.Close()

	calls := 0
	err = w.ReadAll(func([]byte) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestWAL_AppendAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "append.log")

	w, err := NewWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(record{Seq: 1}))
	require.NoError(t, w.Close())

	// 再開啟是追加，不是覆蓋
	w, err = NewWAL(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(record{Seq: 2}))

	count := 0
	require.NoError(t, w.ReadAll(func([]byte) error {
		count++
		return nil
	}))
	assert.Equal(t, 2, count)
	require.NoError(t, w.Close())
}
