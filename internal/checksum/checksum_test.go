package checksum

import "testing"

func TestSum(t *testing.T) {
	// SHA-256 of the empty input.
	const empty = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != empty {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestFields_Boundaries(t *testing.T) {
	if Fields("ab", "c") == Fields("a", "bc") {
		t.Error("moving text across a boundary should change the digest")
	}
	if Fields("a", "b") != Fields("a", "b") {
		t.Error("digest should be deterministic")
	}
}

func TestETag_Quoted(t *testing.T) {
	tag := ETag("x")
	if len(tag) != 66 || tag[0] != '"' || tag[len(tag)-1] != '"' {
		t.Errorf("ETag = %s", tag)
	}
}
