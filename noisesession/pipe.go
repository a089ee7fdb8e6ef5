package noisesession

import "io"

// pipeHalf adapts a pair of *io.PipeReader/*io.PipeWriter into the single
// Read/Write/Close surface noiseconn.Transport expects.
type pipeHalf struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (p *pipeHalf) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *pipeHalf) Write(b []byte) (int, error) { return p.w.Write(b) }

func (p *pipeHalf) Close() error {
	rerr := p.r.Close()
	werr := p.w.Close()
	if rerr != nil {
		return rerr
	}
	return werr
}

// NewPipe returns two connected in-memory transports suitable for driving
// a pair of noiseconn.Conn values against each other without a real
// network — the same role as the teacher package's framer.NewPipe, split
// into two full-duplex ends instead of one half-duplex reader/writer
// pair, since both sides of a noiseconn.Conn read and write independently.
func NewPipe() (a, b io.ReadWriteCloser) {
	ar, bw := io.Pipe()
	br, aw := io.Pipe()
	return &pipeHalf{r: ar, w: aw}, &pipeHalf{r: br, w: bw}
}
