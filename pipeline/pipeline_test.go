package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-autopan/common"
	"github.com/nvr-ai/go-autopan/config"
	"github.com/nvr-ai/go-autopan/images"
	"github.com/nvr-ai/go-autopan/images/kernels"
	"github.com/nvr-ai/go-autopan/motion"
	"github.com/nvr-ai/go-autopan/profiler"
	"github.com/nvr-ai/go-autopan/render"
	"github.com/nvr-ai/go-autopan/store"
	"github.com/nvr-ai/go-autopan/viewport"
)

type sliceSource []image.Image

func (s sliceSource) Frames(ctx context.Context) ([]image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

type countingSink struct {
	writes int
	closed bool
}

func (s *countingSink) Write(image.Image) error {
	s.writes++
	return nil
}

func (s *countingSink) Close() error {
	s.closed = true
	return nil
}

// frame draws a white square of the given size at (x, y) on a gray
// 320x240 background. size 0 draws nothing.
func frame(x, y, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{128, 128, 128, 255}}, image.Point{}, draw.Src)
	if size > 0 {
		draw.Draw(img, image.Rect(x, y, x+size, y+size), image.White, image.Point{}, draw.Src)
	}
	return img
}

func clip() []image.Image {
	return []image.Image{frame(0, 0, 0), frame(0, 0, 0), frame(100, 100, 50), frame(140, 100, 50)}
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output = t.TempDir()
	cfg.Resolution = ""
	cfg.Viewport = "160x120"
	cfg.Render = false
	return cfg
}

func TestRunDetectsAndTracks(t *testing.T) {
	cfg := testConfig(t)
	frames := clip()
	prof := profiler.New(0)

	db, err := store.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()

	res, err := Run(context.Background(), cfg, Deps{Source: sliceSource(frames), Store: db, Profiler: prof})
	require.NoError(t, err)

	assert.Equal(t, common.Size{W: 320, H: 240}, res.Frame)
	assert.Equal(t, common.Size{W: 160, H: 120}, res.Viewport)
	require.Len(t, res.Motion, len(frames))
	require.Len(t, res.Positions, len(frames))
	assert.Empty(t, res.Motion[0])
	assert.Empty(t, res.Motion[1])
	assert.NotEmpty(t, res.Motion[2])

	d, err := motion.New(cfg.Config, images.NewSoftware())
	require.NoError(t, err)
	want, err := d.DetectAll(context.Background(), frames)
	require.NoError(t, err)
	assert.Equal(t, want, res.Motion)

	sizes := []common.Size{res.Frame, res.Frame, res.Frame, res.Frame}
	positions, err := viewport.Track(sizes, want, res.Viewport, cfg.Smoothing)
	require.NoError(t, err)
	assert.Equal(t, positions, res.Positions)
	assert.Equal(t, common.Point{X: 160, Y: 120}, res.Positions[0])

	require.NotEmpty(t, res.RunID)
	stored, err := db.LoadViewport(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Positions, stored)

	var stages []string
	for _, op := range prof.Snapshot().Operations {
		stages = append(stages, op.Name)
	}
	assert.ElementsMatch(t, []string{StageLoad, StageDetect, StageTrack, StageStore}, stages)
}

func TestRunRendersOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render = true
	frameSink, vpSink := &countingSink{}, &countingSink{}

	res, err := Run(context.Background(), cfg, Deps{
		Source:       sliceSource(clip()),
		FrameSink:    frameSink,
		ViewportSink: vpSink,
	})
	require.NoError(t, err)
	assert.Empty(t, res.RunID)

	for _, name := range []string{
		filepath.Join(render.FramesDir, "frame_0001.jpg"),
		filepath.Join(render.FramesDir, "frame_0004.jpg"),
		filepath.Join(render.ViewportDir, "viewport_0004.jpg"),
		render.TrajectoryFile,
	} {
		assert.FileExists(t, filepath.Join(cfg.Output, name))
	}
	assert.Equal(t, 4, frameSink.writes)
	assert.Equal(t, 4, vpSink.writes)
	assert.True(t, frameSink.closed)
	assert.True(t, vpSink.closed)
}

func TestRunEmptyInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Render = true
	sink := &countingSink{}

	res, err := Run(context.Background(), cfg, Deps{Source: sliceSource(nil), FrameSink: sink})
	require.NoError(t, err)
	assert.Empty(t, res.Motion)
	assert.Empty(t, res.Positions)
	assert.NotNil(t, res.Positions)
	assert.Zero(t, sink.writes)
	assert.True(t, sink.closed)
}

func TestRunSizeMismatch(t *testing.T) {
	cfg := testConfig(t)
	frames := clip()
	frames[2] = image.NewRGBA(image.Rect(0, 0, 160, 120))

	_, err := Run(context.Background(), cfg, Deps{Source: sliceSource(frames)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, motion.ErrSizeMismatch))

	var mismatch *common.SizeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 2, mismatch.Index)
}

func TestRunViewportLargerThanFrame(t *testing.T) {
	cfg := testConfig(t)
	cfg.Viewport = "640x360"

	_, err := Run(context.Background(), cfg, Deps{Source: sliceSource(clip())})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrSizeMismatch))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Smoothing = 0

	_, err := Run(context.Background(), cfg, Deps{Source: sliceSource(clip())})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, testConfig(t), Deps{Source: sliceSource(clip())})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunFromDirectory(t *testing.T) {
	in := t.TempDir()
	for i, img := range clip() {
		f, err := os.Create(filepath.Join(in, fmt.Sprintf("frame_%d.png", i+1)))
		require.NoError(t, err)
		require.NoError(t, png.Encode(f, img))
		require.NoError(t, f.Close())
	}

	cfg := testConfig(t)
	cfg.Input = in
	cfg.Database = filepath.Join(t.TempDir(), "autopan.db")
	cfg.Backend = config.BackendBox

	res, err := Run(context.Background(), cfg, Deps{})
	require.NoError(t, err)
	require.Len(t, res.Positions, 4)
	assert.NotEmpty(t, res.Motion[2])

	db, err := store.Open(cfg.Database)
	require.NoError(t, err)
	defer db.Close()

	run, err := db.LoadRun(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, 4, run.Frames)
	assert.Equal(t, in, run.Source)

	boxes, err := db.LoadMotion(context.Background(), res.RunID)
	require.NoError(t, err)
	assert.Equal(t, res.Motion, boxes)
}

func TestRunMissingInput(t *testing.T) {
	_, err := Run(context.Background(), testConfig(t), Deps{})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestSelectRaster(t *testing.T) {
	r, err := selectRaster(config.BackendGaussian, nil)
	require.NoError(t, err)
	assert.IsType(t, &images.Software{}, r)

	r, err = selectRaster(config.BackendBox, nil)
	require.NoError(t, err)
	assert.IsType(t, &kernels.BoxRaster{}, r)

	_, err = selectRaster(config.BackendOpenCV, nil)
	assert.True(t, errors.Is(err, ErrBackendUnavailable))

	injected := kernels.NewBoxRaster()
	r, err = selectRaster(config.BackendOpenCV, injected)
	require.NoError(t, err)
	assert.Same(t, injected, r)
}
