package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vmunix/anisort/internal/catalog"
	"github.com/vmunix/anisort/internal/catalog/mocks"
	"github.com/vmunix/anisort/internal/config"
	"github.com/vmunix/anisort/internal/events"
	"github.com/vmunix/anisort/internal/grouping"
	"github.com/vmunix/anisort/internal/logging"
	"github.com/vmunix/anisort/internal/scanner"
)

type fixture struct {
	src  string
	lib  string
	cfg  *config.Config
	bus  *events.Bus
	pipe *Pipeline
}

func newFixture(t *testing.T, cat catalog.Catalog, modify ...func(*config.Config)) *fixture {
	t.Helper()
	base := t.TempDir()
	f := &fixture{
		src: filepath.Join(base, "incoming"),
		lib: filepath.Join(base, "library"),
	}
	require.NoError(t, os.MkdirAll(f.src, 0755))

	cfg := config.Default()
	cfg.Organize.DestinationRoot = f.lib
	cfg.Backup.Dir = filepath.Join(base, "backups")
	cfg.Pipeline.Workers = 2
	for _, m := range modify {
		m(cfg)
	}
	f.cfg = cfg
	f.bus = events.NewBus(nil, logging.Discard())
	t.Cleanup(func() { _ = f.bus.Close() })

	p, err := New(Deps{Config: cfg, Catalog: cat, Bus: f.bus, Logger: logging.Discard()})
	require.NoError(t, err)
	f.pipe = p
	return f
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.src, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (f *fixture) dest(parts ...string) string {
	return filepath.Join(append([]string{f.lib}, parts...)...)
}

func showCatalog() catalog.Catalog {
	return catalog.NewStaticTitles([]string{"Show"})
}

func keys(groups []*grouping.Group) []grouping.Key {
	out := make([]grouping.Key, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestNew_RejectsBadSettings(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)

	cfg := config.Default()
	cfg.Organize.Mode = "symlink"
	_, err = New(Deps{Config: cfg})
	require.Error(t, err)

	cfg = config.Default()
	cfg.Parser.Engine = "guessit"
	_, err = New(Deps{Config: cfg})
	assert.ErrorIs(t, err, ErrUnknownParser)
}

func TestScan_GroupsAndMatches(t *testing.T) {
	f := newFixture(t, showCatalog())
	f.write(t, "[Grp] Show - 01 [1080p].mkv", "ep1")
	f.write(t, "[Grp] Show - 02 [1080p].mkv", "ep2")
	f.write(t, "nested/[Grp] Show S2 - 03 [1080p].mkv", "s2ep3")
	f.write(t, "[Grp] Other Thing - 01 [720p].mkv", "other")
	f.write(t, "notes.txt", "ignored")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Files)
	assert.Equal(t, []grouping.Key{
		{Title: "Other Thing", Season: 1},
		{Title: "Show", Season: 1},
		{Title: "Show", Season: 2},
	}, keys(res.Groups))
	assert.Equal(t, 2, res.Matched())
	assert.Empty(t, res.ResolutionErrors)

	show, ok := res.Engine.Group(grouping.Key{Title: "Show", Season: 1})
	require.True(t, ok)
	assert.Len(t, show.Members, 2)
	assert.Equal(t, grouping.StatusMatched, show.Status)
	require.NotNil(t, show.Candidate)
	assert.Equal(t, "Show", show.Candidate.DisplayTitle)
}

func TestScan_MissingRoot(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.pipe.Scan(t.Context(), filepath.Join(f.src, "nope"))
	assert.ErrorIs(t, err, scanner.ErrNotFound)
}

func TestScan_CatalogFailureLeavesGroupsUnmatched(t *testing.T) {
	ctrl := gomock.NewController(t)
	cat := mocks.NewMockCatalog(ctrl)
	cat.EXPECT().
		SearchCandidates(gomock.Any(), "Show", "en-US").
		Return(nil, errors.New("connection refused")).
		Times(1)

	f := newFixture(t, cat)
	f.write(t, "[Grp] Show - 01.mkv", "a")
	f.write(t, "[Grp] Show - 02.mkv", "b")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, grouping.StatusUnmatched, res.Groups[0].Status)
	assert.Equal(t, 0, res.Matched())
	require.Len(t, res.ResolutionErrors, 1)
	assert.Equal(t, "Show", res.ResolutionErrors[0].Query)
}

func TestScan_PublishesEvents(t *testing.T) {
	f := newFixture(t, nil)
	f.write(t, "[Grp] Show - 01.mkv", "a")
	done := f.bus.Subscribe(1, events.EventScanCompleted)

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)

	e := <-done.C
	completed, ok := e.(*events.ScanCompleted)
	require.True(t, ok)
	assert.Equal(t, res.RunID, completed.RunID())
	assert.Equal(t, 1, completed.Files)
	assert.Equal(t, 1, completed.Unmatched)
}

func TestOrganize_MoveSafe(t *testing.T) {
	f := newFixture(t, showCatalog())
	ep1 := f.write(t, "[Grp] Show - 01 [1080p].mkv", "ep1")
	ep2 := f.write(t, "[Grp] Show - 02 [1080p].mkv", "ep2")
	s2 := f.write(t, "[Grp] Show S2 - 03 [1080p].mkv", "s2ep3")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Organized)
	assert.Zero(t, report.Skipped+report.Conflicted+report.Duplicated+report.Failed)
	assert.False(t, report.Canceled)

	want := map[string]string{
		ep1: f.dest("Show", "Show S01E01 - 1080p.mkv"),
		ep2: f.dest("Show", "Show S01E02 - 1080p.mkv"),
		s2:  f.dest("Show Season 2", "Show S02E03 - 1080p.mkv"),
	}
	for src, dest := range want {
		assert.NoFileExists(t, src)
		assert.FileExists(t, dest)
		e, ok := report.Entry(src)
		require.True(t, ok)
		assert.Equal(t, dest, e.Destination)
		assert.NotEmpty(t, e.OperationID)
	}

	ops, err := f.pipe.Backups()
	require.NoError(t, err)
	assert.Len(t, ops, 3)

	for _, g := range report.Groups {
		assert.Equal(t, grouping.StatusCompleted, g.Status, g.Key.String())
	}
}

func TestOrganize_UnsafeCopyKeepsNoBackups(t *testing.T) {
	f := newFixture(t, showCatalog(), func(c *config.Config) {
		c.Organize.Mode = "copy"
		safe := false
		c.Organize.SafeMode = &safe
	})
	src := f.write(t, "[Grp] Show - 01 [1080p].mkv", "ep1")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Organized)
	assert.FileExists(t, src)
	assert.FileExists(t, f.dest("Show", "Show S01E01 - 1080p.mkv"))
	assert.NoDirExists(t, f.cfg.Backup.Dir)
}

func TestOrganize_DryRun(t *testing.T) {
	f := newFixture(t, showCatalog())
	src := f.write(t, "[Grp] Show - 01 [1080p].mkv", "ep1")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Planned)
	assert.Equal(t, 0, report.Organized)
	e, ok := report.Entry(src)
	require.True(t, ok)
	assert.Equal(t, grouping.MemberPending, e.Status)
	assert.Equal(t, f.dest("Show", "Show S01E01 - 1080p.mkv"), e.Destination)

	assert.FileExists(t, src)
	assert.NoDirExists(t, f.lib)
	assert.NoDirExists(t, f.cfg.Backup.Dir)
}

func TestOrganize_DuplicatesAndMissingEpisode(t *testing.T) {
	f := newFixture(t, showCatalog())
	dupA := f.write(t, "[A] Show - 01 [720p].mkv", "a")
	dupB := f.write(t, "[B] Show - 01 [1080p].mkv", "b")
	ok := f.write(t, "[A] Show - 02 [720p].mkv", "c")
	sub := f.write(t, "[A] Show - 02 [720p].en.ass", "sub")
	noEp := f.write(t, "[A] Show [720p].mkv", "d")
	f.cfg.Scan.IncludeSubtitles = true

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	require.Len(t, res.Duplicates, 1)
	assert.Equal(t, 1, res.Duplicates[0].Episode)

	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Duplicated)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Organized)

	for _, p := range []string{dupA, dupB} {
		e, found := report.Entry(p)
		require.True(t, found)
		assert.Equal(t, grouping.MemberDuplicate, e.Status)
		assert.Equal(t, StageGroup, e.Stage)
		assert.FileExists(t, p)
	}
	e, found := report.Entry(noEp)
	require.True(t, found)
	assert.Equal(t, grouping.MemberSkipped, e.Status)
	assert.FileExists(t, noEp)

	assert.NoFileExists(t, ok)
	assert.NoFileExists(t, sub)
	assert.FileExists(t, f.dest("Show", "Show S01E02 - 720p.mkv"))
	assert.FileExists(t, f.dest("Show", "Show S01E02 - 720p.en.ass"))
}

func TestOrganize_PlannedCollisionIsConflict(t *testing.T) {
	f := newFixture(t, nil)
	a := f.write(t, "My: Show - 01.mkv", "a")
	b := f.write(t, "My- Show - 01.mkv", "b")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	require.Len(t, res.Groups, 2)

	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Conflicted)
	assert.Equal(t, 0, report.Organized)
	for _, p := range []string{a, b} {
		e, ok := report.Entry(p)
		require.True(t, ok)
		assert.Equal(t, grouping.MemberConflict, e.Status)
		assert.Equal(t, StagePlan, e.Stage)
		assert.FileExists(t, p)
	}
	assert.NoFileExists(t, f.dest("My- Show", "My- Show S01E01.mkv"))
}

func TestOrganize_ExistingDestinationIsConflict(t *testing.T) {
	f := newFixture(t, showCatalog())
	src := f.write(t, "[Grp] Show - 01 [1080p].mkv", "new")
	existing := f.dest("Show", "Show S01E01 - 1080p.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0755))
	require.NoError(t, os.WriteFile(existing, []byte("already here"), 0644))

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Conflicted)
	e, ok := report.Entry(src)
	require.True(t, ok)
	assert.Equal(t, grouping.MemberConflict, e.Status)
	assert.FileExists(t, src)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "already here", string(data))
}

func TestOrganize_MoveOntoIdenticalCopyIsSkipped(t *testing.T) {
	f := newFixture(t, showCatalog())
	src := f.write(t, "[Grp] Show - 01 [1080p].mkv", "same bytes")
	existing := f.dest("Show", "Show S01E01 - 1080p.mkv")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0755))
	require.NoError(t, os.WriteFile(existing, []byte("same bytes"), 0644))

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 0, report.Organized)
	assert.Equal(t, 1, report.Skipped)
	e, ok := report.Entry(src)
	require.True(t, ok)
	assert.Equal(t, grouping.MemberSkipped, e.Status)
	assert.Equal(t, "identical copy already at destination", e.Reason)
	assert.FileExists(t, src)
	require.Len(t, report.Groups, 1)
	assert.NotEqual(t, grouping.StatusCompleted, report.Groups[0].Status)
}

func TestOrganize_SelectedGroupsOnly(t *testing.T) {
	f := newFixture(t, showCatalog())
	s1 := f.write(t, "[Grp] Show - 01.mkv", "a")
	s2 := f.write(t, "[Grp] Show S2 - 01.mkv", "b")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{
		Keys: []grouping.Key{{Title: "Show", Season: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Organized)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, s2, report.Entries[0].Path)
	assert.FileExists(t, s1)
	assert.Equal(t, []grouping.Key{{Title: "Show", Season: 2}}, keys(report.Groups))
}

func TestOrganize_Canceled(t *testing.T) {
	f := newFixture(t, showCatalog())
	src := f.write(t, "[Grp] Show - 01.mkv", "a")
	f.write(t, "[Grp] Show - 02.mkv", "b")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	report, err := f.pipe.Organize(ctx, res, OrganizeOptions{})
	require.NoError(t, err)

	assert.True(t, report.Canceled)
	assert.Equal(t, 2, report.Skipped)
	assert.Equal(t, 0, report.Organized)
	e, ok := report.Entry(src)
	require.True(t, ok)
	assert.Equal(t, reasonCanceled, e.Reason)
	assert.FileExists(t, src)
}

func TestOrganize_ResourceUnavailable(t *testing.T) {
	t.Run("no destination root", func(t *testing.T) {
		f := newFixture(t, nil, func(c *config.Config) { c.Organize.DestinationRoot = "" })
		f.write(t, "[Grp] Show - 01.mkv", "a")
		res, err := f.pipe.Scan(t.Context(), f.src)
		require.NoError(t, err)

		_, err = f.pipe.Organize(t.Context(), res, OrganizeOptions{})
		assert.ErrorIs(t, err, ErrResourceUnavailable)
		assert.ErrorIs(t, err, ErrNoDestination)
	})

	t.Run("destination root is a file", func(t *testing.T) {
		f := newFixture(t, nil)
		src := f.write(t, "[Grp] Show - 01.mkv", "a")
		require.NoError(t, os.WriteFile(f.lib, []byte("not a dir"), 0644))
		res, err := f.pipe.Scan(t.Context(), f.src)
		require.NoError(t, err)

		_, err = f.pipe.Organize(t.Context(), res, OrganizeOptions{})
		assert.ErrorIs(t, err, ErrResourceUnavailable)
		assert.FileExists(t, src)
	})

	t.Run("backup dir is a file", func(t *testing.T) {
		f := newFixture(t, nil)
		src := f.write(t, "[Grp] Show - 01.mkv", "a")
		require.NoError(t, os.WriteFile(f.cfg.Backup.Dir, []byte("not a dir"), 0644))
		res, err := f.pipe.Scan(t.Context(), f.src)
		require.NoError(t, err)

		_, err = f.pipe.Organize(t.Context(), res, OrganizeOptions{})
		assert.ErrorIs(t, err, ErrResourceUnavailable)
		assert.FileExists(t, src)
	})

	t.Run("backup dir read-only", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		f := newFixture(t, showCatalog())
		src := f.write(t, "[Grp] Show - 01.mkv", "a")
		f.write(t, "[Grp] Show - 02.mkv", "b")
		require.NoError(t, os.MkdirAll(f.cfg.Backup.Dir, 0755))
		require.NoError(t, os.Chmod(f.cfg.Backup.Dir, 0555))
		t.Cleanup(func() { _ = os.Chmod(f.cfg.Backup.Dir, 0755) })
		res, err := f.pipe.Scan(t.Context(), f.src)
		require.NoError(t, err)

		report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
		assert.ErrorIs(t, err, ErrResourceUnavailable)
		assert.Nil(t, report)
		assert.FileExists(t, src)
		assert.NoDirExists(t, f.dest("Show"))
	})
}

func TestOrganize_CopyRerunIsNoop(t *testing.T) {
	f := newFixture(t, showCatalog(), func(c *config.Config) { c.Organize.Mode = "copy" })
	src := f.write(t, "[Grp] Show - 01 [1080p].mkv", "ep1")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	first, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, first.Organized)

	res, err = f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	second, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, second.Organized)
	e, ok := second.Entry(src)
	require.True(t, ok)
	assert.True(t, e.Noop)

	ops, err := f.pipe.Backups()
	require.NoError(t, err)
	assert.Len(t, ops, 1)
}

func TestOrganize_PublishesRunCompleted(t *testing.T) {
	f := newFixture(t, showCatalog())
	f.write(t, "[Grp] Show - 01.mkv", "a")
	f.write(t, "[Grp] Show.mkv", "b")
	done := f.bus.Subscribe(1, events.EventRunCompleted)
	organized := f.bus.Subscribe(4, events.EventFileOrganized)

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)

	e := (<-done.C).(*events.RunCompleted)
	assert.Equal(t, report.RunID, e.RunID())
	assert.Equal(t, 1, e.Organized)
	assert.Equal(t, 1, e.Skipped)
	assert.True(t, e.AllSucceeded())

	fo := (<-organized.C).(*events.FileOrganized)
	assert.Equal(t, f.dest("Show", "Show S01E01.mkv"), fo.Destination)
	assert.Equal(t, "move", fo.Mode)
}

func TestRollbackAndPurge(t *testing.T) {
	f := newFixture(t, showCatalog())
	src := f.write(t, "[Grp] Show - 01.mkv", "a")
	dest := f.dest("Show", "Show S01E01.mkv")

	res, err := f.pipe.Scan(t.Context(), f.src)
	require.NoError(t, err)
	report, err := f.pipe.Organize(t.Context(), res, OrganizeOptions{})
	require.NoError(t, err)
	e, ok := report.Entry(src)
	require.True(t, ok)

	rolled := f.bus.Subscribe(1, events.EventRollbackCompleted)
	op, err := f.pipe.Rollback(t.Context(), e.OperationID)
	require.NoError(t, err)
	assert.Equal(t, src, op.SourcePath)
	assert.FileExists(t, src)
	assert.NoFileExists(t, dest)
	assert.Equal(t, e.OperationID, (<-rolled.C).(*events.RollbackCompleted).OperationID)

	ops, err := f.pipe.Backups()
	require.NoError(t, err)
	assert.Empty(t, ops)

	n, err := f.pipe.Purge(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
