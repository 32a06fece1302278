package morph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gekko3d/morph/field"
	"github.com/google/uuid"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("morph: unsupported image format")

type AssetId string

// RasterAsset is a decoded, down-sampled source image.
type RasterAsset struct {
	Source string
	Format string
	Scale  float64
	Raster *field.Raster
}

type AssetServer struct {
	mu      sync.Mutex
	rasters map[AssetId]*Future[*RasterAsset]
	ctx     context.Context
	cancel  context.CancelFunc
	client  *http.Client
}

type AssetServerModule struct {
	Client *http.Client
}

func NewAssetServer(client *http.Client) *AssetServer {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AssetServer{
		rasters: make(map[AssetId]*Future[*RasterAsset]),
		ctx:     ctx,
		cancel:  cancel,
		client:  client,
	}
}

func (m AssetServerModule) Install(app *App, cmd *Commands) {
	app.addResources(NewAssetServer(m.Client))
}

// LoadRaster starts loading source in the background. source is a file
// path or an http(s) URL. The image is decoded and resampled by scale.
func (server *AssetServer) LoadRaster(source string, scale float64) (AssetId, *Future[*RasterAsset]) {
	id := makeAssetId()

	var fut *Future[*RasterAsset]
	if !(scale > 0) || math.IsInf(scale, 1) {
		fut = NewFuture[*RasterAsset]()
		fut.Fail(fmt.Errorf("load %s: %w", source, field.ErrInvalidScale))
	} else {
		fut = LoadAsync(server.ctx, func(ctx context.Context) (*RasterAsset, error) {
			return server.loadRaster(ctx, source, scale)
		})
	}

	server.mu.Lock()
	server.rasters[id] = fut
	server.mu.Unlock()
	return id, fut
}

func (server *AssetServer) Raster(id AssetId) (*Future[*RasterAsset], bool) {
	server.mu.Lock()
	defer server.mu.Unlock()
	fut, ok := server.rasters[id]
	return fut, ok
}

// Release cancels in-flight loads and forgets every asset.
func (server *AssetServer) Release() {
	server.cancel()
	server.mu.Lock()
	clear(server.rasters)
	server.mu.Unlock()
}

func (server *AssetServer) loadRaster(ctx context.Context, source string, scale float64) (*RasterAsset, error) {
	data, err := server.fetch(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	img, format, err := decodeImage(data, source)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", source, err)
	}

	raster, err := field.RasterFromImage(img, scale)
	if err != nil {
		return nil, fmt.Errorf("resample %s: %w", source, err)
	}

	return &RasterAsset{
		Source: source,
		Format: format,
		Scale:  scale,
		Raster: raster,
	}, nil
}

func (server *AssetServer) fetch(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := server.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func decodeImage(data []byte, source string) (image.Image, string, error) {
	if isSVG(data, source) {
		img, err := rasterizeSVG(data)
		return img, "svg", err
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, "", ErrUnsupportedFormat
	}
	return img, format, err
}

func isSVG(data []byte, source string) bool {
	if strings.EqualFold(filepath.Ext(source), ".svg") {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

// rasterizeSVG renders the icon at its view box size.
func rasterizeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	width, height := int(icon.ViewBox.W+0.5), int(icon.ViewBox.H+0.5)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("svg has empty view box %vx%v", icon.ViewBox.W, icon.ViewBox.H)
	}
	icon.SetTarget(0, 0, float64(width), float64(height))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	dasher := rasterx.NewDasher(width, height, scanner)
	icon.Draw(dasher, 1.0)

	return img, nil
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
