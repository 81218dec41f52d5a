package gfx

// OpenGL enum values used by the engine. They mirror the go-gl constants so
// packages that only need enums do not have to link the GL bindings.
const (
	Texture2D               uint32 = 0x0DE1
	TextureCubeMap          uint32 = 0x8513
	TextureCubeMapPositiveX uint32 = 0x8515
	TextureCubeMapNegativeX uint32 = 0x8516
	TextureCubeMapPositiveY uint32 = 0x8517
	TextureCubeMapNegativeY uint32 = 0x8518
	TextureCubeMapPositiveZ uint32 = 0x8519
	TextureCubeMapNegativeZ uint32 = 0x851A
	Texture0                uint32 = 0x84C0

	Framebuffer            uint32 = 0x8D40
	ReadFramebuffer        uint32 = 0x8CA8
	DrawFramebuffer        uint32 = 0x8CA9
	Renderbuffer           uint32 = 0x8D41
	ColorAttachment0       uint32 = 0x8CE0
	DepthAttachment        uint32 = 0x8D00
	DepthStencilAttachment uint32 = 0x821A

	FramebufferComplete                    uint32 = 0x8CD5
	FramebufferUndefined                   uint32 = 0x8219
	FramebufferIncompleteAttachment        uint32 = 0x8CD6
	FramebufferIncompleteMissingAttachment uint32 = 0x8CD7
	FramebufferIncompleteDrawBuffer        uint32 = 0x8CDB
	FramebufferIncompleteReadBuffer        uint32 = 0x8CDC
	FramebufferUnsupported                 uint32 = 0x8CDD
	FramebufferIncompleteMultisample       uint32 = 0x8D56
	FramebufferIncompleteLayerTargets      uint32 = 0x8DA8

	DepthComponent24 uint32 = 0x81A6
	Depth24Stencil8  uint32 = 0x88F0

	Red          uint32 = 0x1903
	RG           uint32 = 0x8227
	RGB          uint32 = 0x1907
	RGBA         uint32 = 0x1908
	RGBA8        uint32 = 0x8058
	SRGB8Alpha8  uint32 = 0x8C43
	RG16F        uint32 = 0x822F
	RGB16F       uint32 = 0x881B
	RGBA16F      uint32 = 0x881A
	RGB32F       uint32 = 0x8815
	Float        uint32 = 0x1406
	UnsignedByte uint32 = 0x1401
	UnsignedInt  uint32 = 0x1405

	TextureMinFilter        uint32 = 0x2801
	TextureMagFilter        uint32 = 0x2800
	TextureWrapS            uint32 = 0x2802
	TextureWrapT            uint32 = 0x2803
	TextureWrapR            uint32 = 0x8072
	TextureMaxAnisotropy    uint32 = 0x84FE
	MaxTextureMaxAnisotropy uint32 = 0x84FF
	Nearest                 int32  = 0x2600
	Linear                  int32  = 0x2601
	NearestMipmapNearest    int32  = 0x2700
	LinearMipmapNearest     int32  = 0x2701
	NearestMipmapLinear     int32  = 0x2702
	LinearMipmapLinear      int32  = 0x2703
	ClampToEdge             int32  = 0x812F
	Repeat                  int32  = 0x2901

	TextureCubeMapSeamless uint32 = 0x884F
	DepthTest              uint32 = 0x0B71
	FramebufferSRGB        uint32 = 0x8DB9
	CullFace               uint32 = 0x0B44
	Less                   uint32 = 0x0201
	Lequal                 uint32 = 0x0203
	ColorBufferBit         uint32 = 0x4000
	DepthBufferBit         uint32 = 0x0100

	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893
	UniformBuffer      uint32 = 0x8A11
	StaticDraw         uint32 = 0x88E4
	DynamicDraw        uint32 = 0x88E8

	Triangles     uint32 = 0x0004
	TriangleStrip uint32 = 0x0005

	InvalidIndex uint32 = 0xFFFFFFFF

	NoError                     uint32 = 0
	InvalidEnum                 uint32 = 0x0500
	InvalidValue                uint32 = 0x0501
	InvalidOperation            uint32 = 0x0502
	OutOfMemory                 uint32 = 0x0505
	InvalidFramebufferOperation uint32 = 0x0506
)
