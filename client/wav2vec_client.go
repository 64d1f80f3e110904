package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

// Classification is the raw four-value result of a classify call: the full
// score vector, the top score, the top class index, and the model's native
// label for that index.
type Classification struct {
	Probs []float32
	Score float32
	Index int
	Label string
}

// ModelMetadata is the JSON sidecar shipped next to the ONNX artifact. It
// names the native label vocabulary in model output order and the tensor
// layout the exported graph expects.
type ModelMetadata struct {
	Labels       []string `json:"labels"`
	SampleRate   int      `json:"sample_rate"`
	InputName    string   `json:"input_name"`
	OutputName   string   `json:"output_name"`
	ApplySoftmax bool     `json:"apply_softmax"`
}

// Options configures the classifier load.
type Options struct {
	// Source identifies the pretrained model on the hub, e.g.
	// "speechbrain/emotion-recognition-wav2vec2-IEMOCAP".
	Source string
	// CacheDir is where materialized model files live across restarts.
	CacheDir string
	// HubBaseURL is the artifact host used when the cache is cold.
	HubBaseURL string
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
	Logger      *slog.Logger
}

// Wav2VecClient runs a pretrained wav2vec2 emotion model through ONNX
// Runtime. It is the only code that touches the model; everything else goes
// through ClassifyFile and Close.
type Wav2VecClient struct {
	session *ort.DynamicAdvancedSession
	meta    ModelMetadata
	log     *slog.Logger
}

// NewWav2VecClient materializes the pretrained model, downloading into the
// cache directory when absent, and opens an inference session. On any
// failure nothing stays initialized; the caller decides whether that is
// fatal.
func NewWav2VecClient(opts Options) (*Wav2VecClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model cache dir: %w", err)
	}

	hub := newModelHub(opts.HubBaseURL, logger)
	modelPath, metaPath, err := hub.Materialize(opts.Source, opts.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to materialize model %q: %w", opts.Source, err)
	}

	meta, err := readModelMetadata(metaPath)
	if err != nil {
		return nil, err
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("emotion model loaded",
		"source", opts.Source,
		"labels", meta.Labels,
		"sample_rate", meta.SampleRate)

	return &Wav2VecClient{session: session, meta: meta, log: logger}, nil
}

func readModelMetadata(path string) (ModelMetadata, error) {
	var meta ModelMetadata
	raw, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read model metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse model metadata: %w", err)
	}

	if meta.SampleRate <= 0 {
		meta.SampleRate = 16000
	}
	if meta.InputName == "" {
		meta.InputName = "signal"
	}
	if meta.OutputName == "" {
		meta.OutputName = "probabilities"
	}
	return meta, nil
}

// ClassifyFile runs the model against a WAV file on disk. Resampling to the
// model's rate and stereo-to-mono conversion happen in here; callers hand
// over a file path and get the raw classification back.
func (w *Wav2VecClient) ClassifyFile(path string) (*Classification, error) {
	samples, err := decodeWAV(path, w.meta.SampleRate)
	if err != nil {
		return nil, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(samples))), samples)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	// A nil output entry makes the runtime allocate the tensor for us.
	outputs := []ort.ArbitraryTensor{nil}
	if err := w.session.Run([]ort.ArbitraryTensor{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	outTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	probs := make([]float32, len(outTensor.GetData()))
	copy(probs, outTensor.GetData())
	if len(probs) == 0 {
		return nil, fmt.Errorf("model produced an empty score vector")
	}
	if w.meta.ApplySoftmax {
		probs = softmax(probs)
	}

	top := 0
	for i, v := range probs {
		if v > probs[top] {
			top = i
		}
	}

	var label string
	if top < len(w.meta.Labels) {
		label = w.meta.Labels[top]
	}

	return &Classification{
		Probs: probs,
		Score: probs[top],
		Index: top,
		Label: label,
	}, nil
}

// Close releases the ONNX session and the runtime environment.
func (w *Wav2VecClient) Close() {
	if w.session != nil {
		w.session.Destroy()
	}
	ort.DestroyEnvironment()
}

// softmax turns logits into a probability distribution. Exported wav2vec2
// graphs differ on whether the final layer already applies it, so the
// metadata decides.
func softmax(logits []float32) []float32 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	var sum float64
	out := make([]float32, len(logits))
	for i, v := range logits {
		e := math.Exp(float64(v - max))
		out[i] = float32(e)
		sum += e
	}
	if sum == 0 {
		return logits
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
