// Package view derives what the user sees from the raw file collection: a
// pure projection through search, type filter and sort order, plus selection
// tracking and aggregate stats. It performs no I/O; the controller feeds it
// fresh collections after every store mutation.
package view

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/cloudvault/cloudvault/internal/models"
)

// FileType is the display category derived from a file name's extension.
type FileType string

const (
	TypeAll         FileType = "all"
	TypePDF         FileType = "pdf"
	TypeDocument    FileType = "document"
	TypeSpreadsheet FileType = "spreadsheet"
	TypeImage       FileType = "image"
	TypeVideo       FileType = "video"
	TypeAudio       FileType = "audio"
	TypeArchive     FileType = "archive"
	TypeOther       FileType = "other"
)

// SortKey selects the ordering of the projected file list.
type SortKey string

const (
	SortName SortKey = "name" // lexicographic ascending
	SortSize SortKey = "size" // largest first
	SortDate SortKey = "date" // most recent first
)

var extTypes = map[string]FileType{
	"pdf":  TypePDF,
	"doc":  TypeDocument,
	"docx": TypeDocument,
	"xls":  TypeSpreadsheet,
	"xlsx": TypeSpreadsheet,
	"jpg":  TypeImage,
	"jpeg": TypeImage,
	"png":  TypeImage,
	"gif":  TypeImage,
	"mp4":  TypeVideo,
	"mov":  TypeVideo,
	"avi":  TypeVideo,
	"mp3":  TypeAudio,
	"wav":  TypeAudio,
	"flac": TypeAudio,
	"zip":  TypeArchive,
	"rar":  TypeArchive,
	"7z":   TypeArchive,
}

// FilterOptions lists the selectable type filters in display order.
func FilterOptions() []FileType {
	return []FileType{
		TypeAll, TypePDF, TypeDocument, TypeSpreadsheet,
		TypeImage, TypeVideo, TypeAudio, TypeArchive, TypeOther,
	}
}

// Classify maps a file name to its display type via the extension after the
// last dot, case-insensitively. Names without a known extension are "other".
// Both the filter options and the display icon go through this single
// function, so the two can never disagree.
func Classify(name string) FileType {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return TypeOther
	}
	if t, ok := extTypes[strings.ToLower(name[i+1:])]; ok {
		return t
	}
	return TypeOther
}

// Stats are aggregates over the unfiltered collection, recomputed whenever
// the collection changes.
type Stats struct {
	TotalFiles  int
	TotalBytes  int64
	LastRefresh time.Time
}

// RefreshedAgo renders the refresh age for display, empty before the first
// refresh.
func (s Stats) RefreshedAgo() string {
	if s.LastRefresh.IsZero() {
		return ""
	}
	return humanize.Time(s.LastRefresh)
}

// Model holds the view state for the file surface. It is rebuilt from the
// collection plus user input; the collection itself is owned by the file
// store and only snapshotted here.
type Model struct {
	files      []models.FileRecord
	search     string
	typeFilter FileType
	sortKey    SortKey
	selection  map[string]struct{}

	lastRefresh time.Time
	collator    *collate.Collator
}

func NewModel() *Model {
	return &Model{
		typeFilter: TypeAll,
		sortKey:    SortName,
		selection:  make(map[string]struct{}),
		collator:   collate.New(language.Und, collate.Loose),
	}
}

// SetFiles replaces the collection snapshot, stamping the refresh time.
// Selection entries for names no longer in the collection are dropped, so
// the selection stays a subset of collection names.
func (m *Model) SetFiles(files []models.FileRecord, at time.Time) {
	m.files = make([]models.FileRecord, len(files))
	copy(m.files, files)
	m.lastRefresh = at

	names := make(map[string]struct{}, len(files))
	for _, f := range files {
		names[f.Name] = struct{}{}
	}
	for name := range m.selection {
		if _, ok := names[name]; !ok {
			delete(m.selection, name)
		}
	}
}

// Reset drops all view state, used when the session ends.
func (m *Model) Reset() {
	m.files = nil
	m.search = ""
	m.typeFilter = TypeAll
	m.sortKey = SortName
	m.selection = make(map[string]struct{})
	m.lastRefresh = time.Time{}
}

func (m *Model) SetSearch(term string)    { m.search = term }
func (m *Model) SetTypeFilter(t FileType) { m.typeFilter = t }
func (m *Model) SetSortKey(k SortKey)     { m.sortKey = k }
func (m *Model) Search() string           { return m.search }
func (m *Model) TypeFilter() FileType     { return m.typeFilter }
func (m *Model) SortKey() SortKey         { return m.sortKey }

func (m *Model) matches(f models.FileRecord) bool {
	if m.typeFilter != TypeAll && Classify(f.Name) != m.typeFilter {
		return false
	}
	if m.search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(f.Name), strings.ToLower(m.search))
}

// Visible projects the collection through the current filter, search and
// sort. The sort is stable: records with equal keys keep their collection
// order.
func (m *Model) Visible() []models.FileRecord {
	var out []models.FileRecord
	for _, f := range m.files {
		if m.matches(f) {
			out = append(out, f)
		}
	}

	switch m.sortKey {
	case SortSize:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Size > out[j].Size
		})
	case SortDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastModified.After(out[j].LastModified)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return m.collator.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
	return out
}

// Toggle flips a file's selection. Names outside the collection are ignored
// so the selection invariant holds.
func (m *Model) Toggle(name string) {
	if _, ok := m.selection[name]; ok {
		delete(m.selection, name)
		return
	}
	for _, f := range m.files {
		if f.Name == name {
			m.selection[name] = struct{}{}
			return
		}
	}
}

// SelectAll toggles the currently visible set as a whole: if every visible
// name is already selected it deselects exactly those, otherwise it selects
// them all. Selections hidden by the filter are untouched either way.
func (m *Model) SelectAll() {
	visible := m.Visible()
	all := len(visible) > 0
	for _, f := range visible {
		if _, ok := m.selection[f.Name]; !ok {
			all = false
			break
		}
	}

	for _, f := range visible {
		if all {
			delete(m.selection, f.Name)
		} else {
			m.selection[f.Name] = struct{}{}
		}
	}
}

func (m *Model) IsSelected(name string) bool {
	_, ok := m.selection[name]
	return ok
}

// Unselect removes a name from the selection, as part of the same step that
// deletes the file.
func (m *Model) Unselect(name string) {
	delete(m.selection, name)
}

// SelectedNames returns the selection in collection order.
func (m *Model) SelectedNames() []string {
	var names []string
	for _, f := range m.files {
		if _, ok := m.selection[f.Name]; ok {
			names = append(names, f.Name)
		}
	}
	return names
}

// Stats aggregates over the whole collection, not the filtered view.
func (m *Model) Stats() Stats {
	s := Stats{TotalFiles: len(m.files), LastRefresh: m.lastRefresh}
	for _, f := range m.files {
		s.TotalBytes += f.Size
	}
	return s
}

var byteUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatBytes renders a byte count with a 1024-based unit and at most two
// decimal places. Zero is exactly "0 Bytes".
func FormatBytes(n int64) string {
	if n <= 0 {
		return "0 Bytes"
	}
	exp := int(math.Floor(math.Log(float64(n)) / math.Log(1024)))
	if exp >= len(byteUnits) {
		exp = len(byteUnits) - 1
	}
	value := float64(n) / math.Pow(1024, float64(exp))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + byteUnits[exp]
}
