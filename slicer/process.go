package slicer

// LayerProcessor consumes sliced layers in index order, for example to
// export them as images or voxels.
type LayerProcessor interface {
	ProcessLayer(l *Layer) error
}

// Walk feeds every layer to p, stopping at the first error.
func Walk(layers []Layer, p LayerProcessor) error {
	for i := range layers {
		if err := p.ProcessLayer(&layers[i]); err != nil {
			return err
		}
	}
	return nil
}
