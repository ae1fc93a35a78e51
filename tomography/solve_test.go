package tomography

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"senseye/geo"
)

func TestReconstructProducesNonNegativeImage(t *testing.T) {
	bounds := geo.Rect{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	links := []LinkReading{
		{A: geo.Point{X: 0, Y: 5}, B: geo.Point{X: 10, Y: 5}, AttenuationDB: 8, Confidence: 0.8},
		{A: geo.Point{X: 5, Y: 0}, B: geo.Point{X: 5, Y: 10}, AttenuationDB: 2, Confidence: 0.8},
		{A: geo.Point{X: 0, Y: 0}, B: geo.Point{X: 10, Y: 10}, AttenuationDB: 1, Confidence: 0.6},
	}
	img, err := Reconstruct(DefaultConfig(), bounds, links)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(img.Values) != img.Grid.NumCells() {
		t.Fatalf("values length %d != cell count %d", len(img.Values), img.Grid.NumCells())
	}
	for _, v := range img.Values {
		if v < 0 {
			t.Fatalf("negative reconstructed value %.4f", v)
		}
	}
	center := img.ValueAt(geo.Point{X: 5, Y: 5})
	corner := img.ValueAt(geo.Point{X: 0.2, Y: 9.8})
	if center <= corner {
		t.Errorf("expected higher attenuation density near the high-attenuation crossing link, center=%.4f corner=%.4f", center, corner)
	}
}

func TestAdaptiveRidgeWithinSpecRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CellSizeM = 1.0
	bounds := geo.Rect{XMin: 0, YMin: 0, XMax: 10, YMax: 10}
	g := NewGrid(bounds, cfg.CellSizeM)
	nCells := g.NumCells()
	link := LinkReading{A: geo.Point{X: 0, Y: 0}, B: geo.Point{X: 10, Y: 0}, AttenuationDB: 5, Confidence: 0.8}

	row := sensingRow(g, cfg, link)
	a := mat.NewDense(1, nCells, row)
	var ata mat.Dense
	ata.Mul(a.T(), a)

	ridge := adaptiveRidge(cfg, &ata, nCells, 1)
	if ridge < cfg.MinRidge || ridge > cfg.MaxRidge {
		t.Errorf("ridge = %v, want within [%v, %v]", ridge, cfg.MinRidge, cfg.MaxRidge)
	}
}

func TestReconstructNoLinks(t *testing.T) {
	bounds := geo.Rect{XMin: 0, YMin: 0, XMax: 5, YMax: 5}
	_, err := Reconstruct(DefaultConfig(), bounds, nil)
	if err != ErrNoLinks {
		t.Fatalf("expected ErrNoLinks, got %v", err)
	}
}
