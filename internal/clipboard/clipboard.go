// Package clipboard implements the copy/cut path list and its persisted
// binary format from spec.md §6: a header, length-prefixed items, an
// optional checksum trailer, and an atomic rename-based save.
package clipboard

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc64"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/consistent-milk12/fsm-sub001/internal/errs"
)

// formatVersion is the on-disk format's current version; bump when the
// header or item encoding changes.
const formatVersion uint32 = 1

// Mode distinguishes a copy entry from a cut (move-on-paste) entry.
type Mode int

const (
	ModeCopy Mode = iota
	ModeCut
)

// Item is one clipboard entry.
type Item struct {
	Path string
	Mode Mode
}

// State is the in-memory clipboard: an ordered item list plus a cursor used
// by ClipboardNav (spec.md §4.2's clipboard-nav action).
type State struct {
	Items      []Item
	Cursor     int
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// header is the fixed-size prefix of the persisted format.
type header struct {
	Version    uint32
	CreatedAt  uint64
	ModifiedAt uint64
	ItemCount  uint32
}

var crcTable = crc64.MakeTable(crc64.ISO)

// Add appends an item and bumps ModifiedAt.
func (s *State) Add(path string, mode Mode) {
	s.Items = append(s.Items, Item{Path: path, Mode: mode})
	s.ModifiedAt = time.Now()
}

// Clear empties the clipboard.
func (s *State) Clear() {
	s.Items = nil
	s.Cursor = 0
	s.ModifiedAt = time.Now()
}

// Nav moves the cursor by delta, clamped to [0, len(Items)-1].
func (s *State) Nav(delta int) {
	if len(s.Items) == 0 {
		s.Cursor = 0
		return
	}
	next := s.Cursor + delta
	if next < 0 {
		next = 0
	}
	if next > len(s.Items)-1 {
		next = len(s.Items) - 1
	}
	s.Cursor = next
}

// Encode serializes s into the persisted binary format: header, then each
// item as a length-prefixed (path-length uint32, path bytes, mode byte)
// record, then an 8-byte CRC-64 trailer over the item payload.
func Encode(s State) []byte {
	var body bytes.Buffer
	for _, item := range s.Items {
		pathBytes := []byte(item.Path)
		binary.Write(&body, binary.LittleEndian, uint32(len(pathBytes)))
		body.Write(pathBytes)
		body.WriteByte(byte(item.Mode))
	}

	var buf bytes.Buffer
	h := header{
		Version:    formatVersion,
		CreatedAt:  uint64(s.CreatedAt.Unix()),
		ModifiedAt: uint64(s.ModifiedAt.Unix()),
		ItemCount:  uint32(len(s.Items)),
	}
	binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(body.Bytes())

	checksum := crc64.Checksum(body.Bytes(), crcTable)
	binary.Write(&buf, binary.LittleEndian, checksum)
	return buf.Bytes()
}

// Decode parses the persisted binary format. It returns
// PersistenceVersionMismatch if the stored version exceeds formatVersion,
// and PersistenceCorrupted if a checksum trailer is present and does not
// match. Data that ends right after the last item has no trailer and is
// accepted without a checksum check.
func Decode(data []byte) (State, error) {
	r := bytes.NewReader(data)
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return State{}, errs.PersistenceCorrupted("", "truncated header")
	}
	if h.Version > formatVersion {
		return State{}, errs.PersistenceVersionMismatch(formatVersion, h.Version)
	}

	items := make([]Item, 0, h.ItemCount)
	bodyStart := len(data) - r.Len()
	for i := uint32(0); i < h.ItemCount; i++ {
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return State{}, errs.PersistenceCorrupted("", "truncated item length")
		}
		pathBytes := make([]byte, n)
		if _, err := io.ReadFull(r, pathBytes); err != nil {
			return State{}, errs.PersistenceCorrupted("", "truncated item path")
		}
		modeByte, err := r.ReadByte()
		if err != nil {
			return State{}, errs.PersistenceCorrupted("", "truncated item mode")
		}
		items = append(items, Item{Path: string(pathBytes), Mode: Mode(modeByte)})
	}
	bodyEnd := len(data) - r.Len()

	if r.Len() > 0 {
		var storedChecksum uint64
		if err := binary.Read(r, binary.LittleEndian, &storedChecksum); err != nil {
			return State{}, errs.PersistenceCorrupted("", "truncated checksum trailer")
		}
		body := data[bodyStart:bodyEnd]
		if crc64.Checksum(body, crcTable) != storedChecksum {
			return State{}, errs.PersistenceCorrupted("", "checksum mismatch")
		}
	}

	return State{
		Items:      items,
		CreatedAt:  time.Unix(int64(h.CreatedAt), 0),
		ModifiedAt: time.Unix(int64(h.ModifiedAt), 0),
	}, nil
}

// Save atomically persists s to path: encode, write to a uuid-suffixed
// temp file beside path, optionally back up the existing file to path.bak,
// then rename the temp file over path.
func Save(path string, s State, keepBackup bool) error {
	data := Encode(s)
	tmpPath := fmt.Sprintf("%s.tmp.%s", path, uuid.NewString())

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return errs.Wrap(errs.KindAtomicSaveFailed, "write temp clipboard file", err)
	}

	if keepBackup {
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, path+".bak"); err != nil {
				os.Remove(tmpPath)
				return errs.Wrap(errs.KindAtomicSaveFailed, "back up existing clipboard file", err)
			}
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errs.Wrap(errs.KindAtomicSaveFailed, "rename temp clipboard file into place", err)
	}
	return nil
}

// Load reads and decodes the clipboard file at path.
func Load(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, errs.Wrap(errs.KindNotFound, "read clipboard file", err)
	}
	return Decode(data)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}
