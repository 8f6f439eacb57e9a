package model

import "testing"

func TestInferModelNameFromURL(t *testing.T) {
	cases := map[string]string{
		"s3://bucket/models/foo.zip":            "foo",
		"s3://bucket/models/foo/":               "foo",
		"s3://bucket/my-model!v2.zip":           "my_model_v2",
		"file:///opt/models/resnet18_v1.tar.gz": "resnet18_v1",
		"https://host/a/b/bert.base.uncased/":   "bert_base_uncased",
		"/local/path/model.gguf":                "model",
		"model.onnx":                            "model",
		"s3://bucket/models/a--b.zip":           "a_b",
		"djl://ai.djl.pytorch/resnet":           "resnet",
		"file:///models/_private/":              "_private",
	}
	for in, want := range cases {
		if got := InferModelNameFromURL(in); got != want {
			t.Fatalf("InferModelNameFromURL(%q)=%q want %q", in, got, want)
		}
	}
}

func TestInferModelNameIsDeterministic(t *testing.T) {
	const u = "s3://bucket/x y/some model.zip"
	if InferModelNameFromURL(u) != InferModelNameFromURL(u) {
		t.Fatalf("not deterministic")
	}
}
