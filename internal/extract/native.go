package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// NativeBackend extracts text in-process with ledongthuc/pdf. Fast and
// dependency-free, but strict about malformed files.
type NativeBackend struct{}

func NewNativeBackend() *NativeBackend { return &NativeBackend{} }

func (b *NativeBackend) Name() string { return MethodNative }

func (b *NativeBackend) Extract(ctx context.Context, path string) (text string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables; treat that the
	// same as a parse error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &BackendError{Backend: b.Name(), Kind: ParseFailure, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return "", &BackendError{Backend: b.Name(), Kind: Timeout, Reason: err.Error()}
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", &BackendError{Backend: b.Name(), Kind: ParseFailure, Reason: err.Error()}
	}
	defer func() {
		_ = f.Close()
	}()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", &BackendError{Backend: b.Name(), Kind: ParseFailure, Reason: err.Error()}
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", &BackendError{Backend: b.Name(), Kind: ParseFailure, Reason: err.Error()}
	}
	return buf.String(), nil
}
