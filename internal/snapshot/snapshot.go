// Package snapshot сохраняет содержимое именованных holder'ов в
// zstd-сжатый файл: строка JSON-заголовка, затем gob-тело с деревьями
// предметов в формате itemcodec.
package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/udisondev/itemcore/internal/itemcodec"
	"github.com/udisondev/itemcore/internal/model"
)

// Version — версия формата файла.
const Version = 1

// ErrCatalogMismatch: snapshot записан с другим каталогом предметов.
var ErrCatalogMismatch = errors.New("snapshot catalog digest mismatch")

// Header записывается первой строкой файла (JSON) и читается без распаковки тела.
type Header struct {
	Version       int       `json:"version"`
	ID            string    `json:"id"`
	CatalogDigest string    `json:"catalog_digest"`
	CreatedAt     time.Time `json:"created_at"`
	Holders       int       `json:"holders"`
	Items         int       `json:"items"`
}

// HolderV1 — закодированное содержимое одного holder'а.
type HolderV1 struct {
	Key     string
	Indexes []int32 // индекс каждого предмета верхнего уровня в holder'е
	Items   []byte  // itemcodec.MarshalItems
}

// Entry связывает восстановленный предмет с его индексом в holder'е.
type Entry struct {
	Index int32
	Item  *model.Item
}

// SnapshotV1 — тело snapshot'а.
type SnapshotV1 struct {
	Header  Header
	Holders []HolderV1
}

// Capture кодирует содержимое holder'ов. Ключи сортируются,
// поэтому одинаковый мир даёт одинаковое тело.
func Capture(holders map[string]model.Holder) []HolderV1 {
	keys := make([]string, 0, len(holders))
	for k := range holders {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]HolderV1, 0, len(keys))
	for _, k := range keys {
		h := holders[k]
		var (
			indexes []int32
			items   []*model.Item
		)
		for i := h.FirstIndex(); i < h.LastIndex(); i++ {
			if it := h.ThingAt(i); it != nil {
				indexes = append(indexes, i)
				items = append(items, it)
			}
		}
		out = append(out, HolderV1{Key: k, Indexes: indexes, Items: itemcodec.MarshalItems(items)})
	}
	return out
}

// Restore декодирует содержимое holder'ов через f.
// Вызывающий сам размещает предметы в holder'ах.
func Restore(f itemcodec.Factory, snap SnapshotV1) (map[string][]Entry, error) {
	out := make(map[string][]Entry, len(snap.Holders))
	for _, h := range snap.Holders {
		items, err := itemcodec.UnmarshalItems(f, h.Items)
		if err != nil {
			return nil, fmt.Errorf("holder %q: %w", h.Key, err)
		}
		if len(items) != len(h.Indexes) {
			return nil, fmt.Errorf("holder %q: %d items but %d indexes", h.Key, len(items), len(h.Indexes))
		}
		entries := make([]Entry, len(items))
		for i, item := range items {
			entries[i] = Entry{Index: h.Indexes[i], Item: item}
		}
		out[h.Key] = entries
	}
	return out, nil
}

// Write атомарно записывает snapshot (временный файл + rename).
//
// Parameters:
//   - path: путь к файлу
//   - digest: DigestHex каталога, с которым закодированы предметы
//   - holders: результат Capture
func Write(path, digest string, holders []HolderV1) (Header, error) {
	hdr := Header{
		Version:       Version,
		ID:            uuid.NewString(),
		CatalogDigest: digest,
		CreatedAt:     time.Now().UTC(),
		Holders:       len(holders),
	}
	for _, h := range holders {
		hdr.Items += len(h.Indexes)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return hdr, fmt.Errorf("creating snapshot dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return hdr, fmt.Errorf("creating snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, SnapshotV1{Header: hdr, Holders: holders}); err != nil {
		tmp.Close()
		return hdr, err
	}
	if err := tmp.Close(); err != nil {
		return hdr, fmt.Errorf("closing snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return hdr, fmt.Errorf("renaming snapshot file: %w", err)
	}
	return hdr, nil
}

func encode(f *os.File, snap SnapshotV1) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(snap.Header)
	if err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing zstd writer: %w", err)
	}
	return nil
}

// ReadHeader читает только заголовок.
func ReadHeader(path string) (Header, error) {
	var hdr Header
	err := withReader(path, func(br *bufio.Reader) error {
		var err error
		hdr, err = readHeader(br)
		return err
	})
	return hdr, err
}

// Read читает snapshot и проверяет digest каталога.
// Пустой digest отключает проверку.
func Read(path, digest string) (SnapshotV1, error) {
	var snap SnapshotV1
	err := withReader(path, func(br *bufio.Reader) error {
		hdr, err := readHeader(br)
		if err != nil {
			return err
		}
		if digest != "" && !strings.EqualFold(hdr.CatalogDigest, digest) {
			return fmt.Errorf("%w: snapshot %s has %s, catalog has %s",
				ErrCatalogMismatch, hdr.ID, hdr.CatalogDigest, digest)
		}
		if err := gob.NewDecoder(br).Decode(&snap); err != nil {
			return fmt.Errorf("gob decode: %w", err)
		}
		return nil
	})
	return snap, err
}

func withReader(path string, fn func(*bufio.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	return fn(bufio.NewReaderSize(dec, 64*1024))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var hdr Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return hdr, fmt.Errorf("reading header: %w", err)
	}
	if err := json.Unmarshal(line, &hdr); err != nil {
		return hdr, fmt.Errorf("decoding header: %w", err)
	}
	if hdr.Version != Version {
		return hdr, fmt.Errorf("unsupported snapshot version %d", hdr.Version)
	}
	return hdr, nil
}
