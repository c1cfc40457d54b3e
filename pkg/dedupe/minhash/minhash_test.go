package minhash

import "testing"

func TestSignature_Deterministic(t *testing.T) {
	e := New()
	a := e.Signature("Der schnelle braune Fuchs springt")
	b := e.Signature("Der schnelle braune Fuchs springt")
	if a != b {
		t.Fatalf("expected identical signatures for identical input")
	}
}

func TestSimilarity_SelfIsOne(t *testing.T) {
	e := New()
	sig := e.Signature("Mathematik fuer Grundschueler")
	if got := Similarity(sig, sig); got != 1.0 {
		t.Fatalf("Similarity(x,x) = %v, want 1.0", got)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	e := New()
	a := e.Signature("Photosynthese in Pflanzenzellen")
	b := e.Signature("Zellatmung in Mitochondrien")
	if Similarity(a, b) != Similarity(b, a) {
		t.Fatalf("Similarity must be symmetric")
	}
}

func TestSimilarity_DifferentTextsScoreLower(t *testing.T) {
	e := New()
	a := e.Signature("Die Photosynthese wandelt Lichtenergie in chemische Energie um")
	b := e.Signature("Die Photosynthese wandelt Lichtenergie in chemische Energie um")
	c := e.Signature("Der Zweite Weltkrieg begann 1939 in Europa")

	if Similarity(a, b) != 1.0 {
		t.Fatalf("identical text should score 1.0")
	}
	if Similarity(a, c) >= Similarity(a, b) {
		t.Fatalf("unrelated text should score lower than identical text")
	}
}

func TestSignature_EmptyTextIsAllMax(t *testing.T) {
	e := New()
	sig := e.Signature("")
	for _, v := range sig {
		if v != ^uint32(0) {
			t.Fatalf("expected all-max signature for empty text")
		}
	}
}
