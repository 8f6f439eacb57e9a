package translator

// PassthroughName is the registered name of the identity translator.
const PassthroughName = "passthrough"

// Passthrough returns payloads unchanged.
type Passthrough struct{}

func (Passthrough) Preprocess(in []byte) ([]byte, error)   { return in, nil }
func (Passthrough) Postprocess(out []byte) ([]byte, error) { return out, nil }

// PassthroughFactory always builds a Passthrough.
type PassthroughFactory struct{}

func (PassthroughFactory) NewTranslator(map[string]any) (Translator, error) {
	return Passthrough{}, nil
}
