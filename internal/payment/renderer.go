package payment

import "io"

// Renderer is the scannable-code capability the engine produces to. It is
// handed a request URI and a target surface and is fire-and-forget; the
// engine never depends on the rendering result. Implementations live with the
// UI, not here.
type Renderer interface {
	Render(uri string, surface io.Writer) error
}
