package gpu

import (
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/morph"
	"github.com/gekko3d/morph/render/gpu/shaders"
	"github.com/gekko3d/morph/view"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Config is the window and point material of the renderer.
type Config struct {
	Width  int
	Height int
	Title  string
	Camera view.Camera
	Style  view.Style
}

func DefaultConfig() Config {
	return Config{
		Width:  1280,
		Height: 720,
		Title:  "morph",
		Camera: view.DefaultCamera(),
		Style:  view.DefaultStyle(),
	}
}

// Renderer draws the particle table as instanced, textured point sprites.
type Renderer struct {
	cfg    Config
	window *glfw.Window
	logger morph.Logger

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	pipeline    *wgpu.RenderPipeline
	uniformBuf  *wgpu.Buffer
	instanceBuf *wgpu.Buffer
	spriteTex   *wgpu.Texture
	spriteView  *wgpu.TextureView
	sampler     *wgpu.Sampler
	bindGroup   *wgpu.BindGroup

	instances int
	released  bool
}

// New opens the window and initialises the GPU. It must be called from the
// main OS thread.
func New(cfg Config) (*Renderer, error) {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	win, err := createWindow(cfg.Width, cfg.Height, cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	r := &Renderer{cfg: cfg, window: win, logger: morph.NewNopLogger()}
	if err := r.initGPU(); err != nil {
		r.Release()
		return nil, err
	}
	if err := r.initPipeline(); err != nil {
		r.Release()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) initGPU() error {
	r.instance = wgpu.CreateInstance(nil)
	r.surface = r.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(r.window))

	adapter, err := r.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.adapter = adapter

	r.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.queue = r.device.GetQueue()

	width, height := r.window.GetFramebufferSize()
	caps := r.surface.GetCapabilities(adapter)
	r.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.surface.Configure(adapter, r.device, r.config)
	return nil
}

func (r *Renderer) initPipeline() error {
	module, err := r.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "Points Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PointsWGSL},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}
	defer module.Release()

	r.pipeline, err = r.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "Points Pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: instanceStride,
				StepMode:    wgpu.VertexStepModeInstance,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format: r.config.Format,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
						Operation: wgpu.BlendOperationAdd,
					},
					Alpha: wgpu.BlendComponent{
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOne,
						Operation: wgpu.BlendOperationAdd,
					},
				},
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create render pipeline: %w", err)
	}

	r.uniformBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Points Uniforms",
		Size:  uint64(unsafe.Sizeof(uniforms{})),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create uniform buffer: %w", err)
	}

	if err := r.initSprite(); err != nil {
		return err
	}

	layout := r.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	r.bindGroup, err = r.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: r.uniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: r.spriteView},
			{Binding: 2, Sampler: r.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	return nil
}

func (r *Renderer) initSprite() error {
	img := view.SpriteImage(view.SpriteSize)
	w, h := uint32(img.Bounds().Dx()), uint32(img.Bounds().Dy())
	extent := wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	var err error
	r.spriteTex, err = r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Point Sprite",
		Size:          extent,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension:     wgpu.TextureDimension2D,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("create sprite texture: %w", err)
	}
	err = r.queue.WriteTexture(r.spriteTex.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  4 * w,
		RowsPerImage: h,
	}, &extent)
	if err != nil {
		return fmt.Errorf("upload sprite texture: %w", err)
	}

	r.spriteView, err = r.spriteTex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create sprite view: %w", err)
	}

	r.sampler, err = r.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}
	return nil
}

func (r *Renderer) resize(width, height int) {
	if width <= 0 || height <= 0 || r.released {
		return
	}
	r.config.Width = uint32(width)
	r.config.Height = uint32(height)
	r.surface.Configure(r.adapter, r.device, r.config)
}

func (r *Renderer) Install(app *morph.App, cmd *morph.Commands) {
	r.logger = app.Logger()
	cursor, vp, in := morph.EnsureInput(app, r.cfg.Width, r.cfg.Height)
	vp.Width, vp.Height = r.window.GetSize()
	r.bindInput(cursor, vp, in)

	cmd.AddResources(r)
	app.UseSystem(morph.System(uploadSystem).InStage(morph.PreRender).RunAlways())
	app.UseSystem(morph.System(drawSystem).InStage(morph.Render).RunAlways())
}

// Run pumps window events and calls frame until the window is closed.
func (r *Renderer) Run(frame func() bool) error {
	for !r.window.ShouldClose() {
		glfw.PollEvents()
		if !frame() {
			break
		}
	}
	return nil
}

func (r *Renderer) NeedsNormals() bool { return false }

// upload writes positions into the instance buffer, growing it when the
// table outgrew it.
func (r *Renderer) upload(positions []byte, count int) error {
	size := uint64(len(positions))
	if r.instanceBuf == nil || r.instanceBuf.GetSize() < size {
		if r.instanceBuf != nil {
			r.instanceBuf.Release()
		}
		var err error
		r.instanceBuf, err = r.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: "Point Instances",
			Size:  size,
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			r.instanceBuf = nil
			return err
		}
	}
	if err := r.queue.WriteBuffer(r.instanceBuf, 0, positions); err != nil {
		return err
	}
	r.instances = count
	return nil
}

func (r *Renderer) draw(u uniforms) error {
	if err := r.queue.WriteBuffer(r.uniformBuf, 0, u.bytes()); err != nil {
		return fmt.Errorf("write uniforms: %w", err)
	}

	nextTexture, err := r.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	defer nextTexture.Release()

	target, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer target.Release()

	encoder, err := r.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       target,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	if r.instances > 0 && r.instanceBuf != nil {
		pass.SetPipeline(r.pipeline)
		pass.SetBindGroup(0, r.bindGroup, nil)
		pass.SetVertexBuffer(0, r.instanceBuf, 0, wgpu.WholeSize)
		pass.Draw(6, uint32(r.instances), 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}
	pass.Release()

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmdBuffer.Release()

	r.queue.Submit(cmdBuffer)
	r.surface.Present()
	return nil
}

// Release frees every GPU object and closes the window. Safe to call twice.
func (r *Renderer) Release() {
	if r.released {
		return
	}
	r.released = true

	if r.bindGroup != nil {
		r.bindGroup.Release()
	}
	if r.sampler != nil {
		r.sampler.Release()
	}
	if r.spriteView != nil {
		r.spriteView.Release()
	}
	if r.spriteTex != nil {
		r.spriteTex.Release()
	}
	if r.instanceBuf != nil {
		r.instanceBuf.Release()
	}
	if r.uniformBuf != nil {
		r.uniformBuf.Release()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	if r.queue != nil {
		r.queue.Release()
	}
	if r.device != nil {
		r.device.Release()
	}
	if r.adapter != nil {
		r.adapter.Release()
	}
	if r.surface != nil {
		r.surface.Release()
	}
	if r.instance != nil {
		r.instance.Release()
	}

	if r.window != nil {
		r.window.Destroy()
		glfw.Terminate()
	}
	r.logger.Debugf("wgpu renderer released")
}

func uploadSystem(r *Renderer, cmd *morph.Commands) {
	f := morph.GetResource[morph.Field](cmd.App())
	if !f.Ready() {
		return
	}
	table := f.Table()
	if !table.TakeDirty() && r.instances == table.Len() {
		return
	}
	if err := r.upload(positionBytes(table.Current), table.Len()); err != nil {
		r.logger.Errorf("upload particles: %v", err)
	}
}

func drawSystem(r *Renderer, cursor *morph.Cursor) {
	width, height := int(r.config.Width), int(r.config.Height)
	if err := r.draw(makeUniforms(r.cfg.Camera, r.cfg.Style, cursor.Vec2(), width, height)); err != nil {
		r.logger.Errorf("draw: %v", err)
	}
}
