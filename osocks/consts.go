// Package osocks implements the wire protocol spoken between ioredir
// and an osocks relay server: a fixed 512-byte handshake frame followed
// by an RC4-keyed duplex byte stream.
package osocks

// Frame layout. Only the leading CleartextSize bytes of a handshake
// frame are ever encrypted; the trailing IV travels in the clear so the
// peer can rederive the session key before decrypting the rest.
const (
	Magic uint32 = 0x526f6e61

	FrameSize     = 512
	HostFieldSize = 257
	PortFieldSize = 15
	IVSize        = 236

	magicSize     = 4
	CleartextSize = magicSize + HostFieldSize + PortFieldSize // 276

	hostOff = magicSize
	portOff = hostOff + HostFieldSize
	ivOff   = portOff + PortFieldSize
)

// MaxSecretSize is the longest secret a ServerEntry keeps; longer
// configured secrets are truncated to this length.
const MaxSecretSize = 256
