package translator

import (
	"context"
	"fmt"

	"github.com/richinsley/goshaderbg/graphics"
	"github.com/richinsley/goshaderbg/log"
	gst "github.com/richinsley/goshadertranslator"
)

var logger = log.New("translator")

// Result is translated shader code plus the names the translator gave to the
// original uniforms and attributes.
type Result struct {
	Code  string
	Names map[string]string
}

// Name returns the identifier to look up for an original variable name.
// Variables the translator did not report keep their original name.
func (r *Result) Name(original string) string {
	if r == nil {
		return original
	}
	if mapped, ok := r.Names[original]; ok && mapped != "" {
		return mapped
	}
	return original
}

// Translator turns WebGL2 shader text into code the current context compiles.
type Translator interface {
	Translate(stage graphics.Stage, source string) (*Result, error)
}

// ANGLE translates with the wasm-hosted ANGLE shader compiler.
type ANGLE struct {
	st   *gst.ShaderTranslator
	gles bool
}

// New creates an ANGLE translator. When gles is set the output is ESSL,
// otherwise GLSL 4.10 core.
func New(ctx context.Context, gles bool) (*ANGLE, error) {
	st, err := gst.NewShaderTranslator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	return &ANGLE{st: st, gles: gles}, nil
}

func (a *ANGLE) Translate(stage graphics.Stage, source string) (*Result, error) {
	outputFormat := gst.OutputFormatGLSL410
	if a.gles {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := a.st.TranslateShader(source, stage.String(), gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, &graphics.ShaderError{Stage: "translate", Log: fmt.Sprintf("%s: %v", stage, err)}
	}

	variables := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		variables[name] = v.MappedName
	}
	logger.Debugf("translated %s shader, %d variables", stage, len(variables))
	return &Result{Code: out.Code, Names: variables}, nil
}
