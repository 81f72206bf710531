// Package scanner lazily discovers video and subtitle files under a root
// directory.
package scanner

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/karrick/godirwalk"
)

// DefaultVideoExtensions are the container formats recognized as episodes.
var DefaultVideoExtensions = []string{
	".mkv", ".mp4", ".avi", ".m4v", ".mov", ".wmv", ".flv",
	".webm", ".ts", ".m2ts", ".mpg", ".mpeg", ".ogv",
}

// DefaultSubtitleExtensions are the sidecar formats carried alongside episodes.
var DefaultSubtitleExtensions = []string{".srt", ".ass", ".ssa", ".sub", ".idx", ".vtt", ".sup"}

// DefaultPruneDirs are directory names never descended into.
var DefaultPruneDirs = []string{"extras", "sample", "samples"}

// MediaFile is one discovered file. Path is absolute.
type MediaFile struct {
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	ModTime    time.Time `json:"mod_time"`
	IsSubtitle bool      `json:"is_subtitle,omitempty"`
}

// Ext returns the lowercased extension of the file.
func (f MediaFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

var reLangTag = regexp.MustCompile(`^\.[A-Za-z]{2,3}$`)

// FullExt is Ext plus, for subtitles, a language tag such as ".en" in
// "Show - 01.en.ass". Organized files keep the full suffix.
func (f MediaFile) FullExt() string {
	ext := filepath.Ext(f.Path)
	if !f.IsSubtitle {
		return strings.ToLower(ext)
	}
	inner := filepath.Ext(strings.TrimSuffix(f.Path, ext))
	if reLangTag.MatchString(inner) {
		return strings.ToLower(inner + ext)
	}
	return strings.ToLower(ext)
}

// Options configures a Scanner.
type Options struct {
	VideoExtensions    []string
	SubtitleExtensions []string
	IncludeSubtitles   bool
	Recursive          bool
	PruneDirs          []string
	Logger             *slog.Logger
}

// DefaultOptions returns a recursive, subtitle-aware configuration.
func DefaultOptions() Options {
	return Options{
		VideoExtensions:    DefaultVideoExtensions,
		SubtitleExtensions: DefaultSubtitleExtensions,
		IncludeSubtitles:   true,
		Recursive:          true,
		PruneDirs:          DefaultPruneDirs,
	}
}

// Scanner walks a directory tree one level at a time.
type Scanner struct {
	video     map[string]bool
	subtitles map[string]bool
	prune     map[string]bool
	recursive bool
	log       *slog.Logger

	mu       sync.Mutex
	warnings []Warning
}

// New creates a Scanner. Extensions are matched case-insensitively; an
// extension listed as both video and subtitle counts as video.
func New(opts Options) *Scanner {
	s := &Scanner{
		video:     toSet(opts.VideoExtensions),
		subtitles: map[string]bool{},
		prune:     toSet(opts.PruneDirs),
		recursive: opts.Recursive,
		log:       opts.Logger,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if opts.IncludeSubtitles {
		for ext := range toSet(opts.SubtitleExtensions) {
			if !s.video[ext] {
				s.subtitles[ext] = true
			}
		}
	}
	return s
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			continue
		}
		if !strings.HasPrefix(item, ".") {
			item = "." + item
		}
		set[item] = true
	}
	return set
}

// Warnings returns the problems recorded by the most recent traversal.
func (s *Scanner) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

func (s *Scanner) warn(path string, err error) {
	s.log.Warn("skipping unreadable entry", "path", path, "error", err)
	s.mu.Lock()
	s.warnings = append(s.warnings, Warning{Path: path, Err: err})
	s.mu.Unlock()
}

// Scan returns a lazy sequence of media files under root. Nothing is read
// until the sequence is ranged over, and every range starts a fresh
// traversal. A fatal problem (missing root, cancellation) is yielded as the
// final element with a non-nil error.
func (s *Scanner) Scan(ctx context.Context, root string) iter.Seq2[MediaFile, error] {
	return func(yield func(MediaFile, error) bool) {
		s.mu.Lock()
		s.warnings = nil
		s.mu.Unlock()

		abs, err := validateRoot(root)
		if err != nil {
			yield(MediaFile{}, err)
			return
		}

		scratch := make([]byte, godirwalk.MinimumScratchBufferSize)
		pending := []string{abs}
		for len(pending) > 0 {
			dir := pending[len(pending)-1]
			pending = pending[:len(pending)-1]

			ents, err := godirwalk.ReadDirents(dir, scratch)
			if err != nil {
				if dir == abs {
					yield(MediaFile{}, &ScanError{Path: dir, Err: err})
					return
				}
				s.warn(dir, err)
				continue
			}
			sort.Sort(ents)

			var subdirs []string
			for _, de := range ents {
				if err := ctx.Err(); err != nil {
					yield(MediaFile{}, &ScanError{Path: dir, Err: err})
					return
				}

				name := de.Name()
				if strings.HasPrefix(name, ".") {
					continue
				}
				path := filepath.Join(dir, name)

				if de.IsDir() {
					if s.recursive && !s.prune[strings.ToLower(name)] {
						subdirs = append(subdirs, path)
					}
					continue
				}

				file, ok := s.inspect(path, de)
				if !ok {
					continue
				}
				if !yield(file, nil) {
					return
				}
			}

			// Reverse push keeps the traversal in lexical order.
			for i := len(subdirs) - 1; i >= 0; i-- {
				pending = append(pending, subdirs[i])
			}
		}
	}
}

func (s *Scanner) inspect(path string, de *godirwalk.Dirent) (MediaFile, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	isSub := s.subtitles[ext]
	if !s.video[ext] && !isSub {
		return MediaFile{}, false
	}
	if !de.IsRegular() && !de.IsSymlink() {
		return MediaFile{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		s.warn(path, err)
		return MediaFile{}, false
	}
	if !info.Mode().IsRegular() {
		return MediaFile{}, false
	}
	if info.Size() == 0 {
		s.log.Debug("skipping empty file", "path", path)
		return MediaFile{}, false
	}

	return MediaFile{
		Path:       path,
		SizeBytes:  info.Size(),
		ModTime:    info.ModTime(),
		IsSubtitle: isSub,
	}, true
}

func validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ScanError{Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", &ScanError{Path: abs, Err: ErrNotFound}
	case err != nil:
		return "", &ScanError{Path: abs, Err: err}
	case !info.IsDir():
		return "", &ScanError{Path: abs, Err: ErrNotADirectory}
	}
	return abs, nil
}
