package nn

// Weight tensors are indexed [layer][destination][source+1]; slot 0 of each
// destination row is the bias. Flattening walks the tensor in that order.

// CountWeights returns the number of weights, biases included, of a fully
// connected layered network.
func CountWeights(layers []int) int {
	count := 0
	for l := 0; l+1 < len(layers); l++ {
		count += layers[l+1] * (layers[l] + 1)
	}
	return count
}

func validateLayers(layers []int) error {
	if len(layers) < 2 {
		return configError("at least 2 layers required, got %d", len(layers))
	}
	for i, size := range layers {
		if size < 1 {
			return configError("layer %d has size %d", i, size)
		}
	}
	return nil
}

func newWeightTensor(layers []int) [][][]float64 {
	weights := make([][][]float64, len(layers)-1)
	for l := range weights {
		weights[l] = make([][]float64, layers[l+1])
		for j := range weights[l] {
			weights[l][j] = make([]float64, layers[l]+1)
		}
	}
	return weights
}

func newBoolTensor(layers []int) [][][]bool {
	out := make([][][]bool, len(layers)-1)
	for l := range out {
		out[l] = make([][]bool, layers[l+1])
		for j := range out[l] {
			out[l][j] = make([]bool, layers[l]+1)
		}
	}
	return out
}

func newActivationValues(layers []int) [][]float64 {
	values := make([][]float64, len(layers))
	for l, size := range layers {
		values[l] = make([]float64, size)
	}
	return values
}

func flattenWeights(weights [][][]float64) []float64 {
	out := make([]float64, 0)
	for _, layer := range weights {
		for _, row := range layer {
			out = append(out, row...)
		}
	}
	return out
}

// unflattenWeights assumes len(flat) was already checked against the tensor.
func unflattenWeights(weights [][][]float64, flat []float64) {
	i := 0
	for _, layer := range weights {
		for _, row := range layer {
			i += copy(row, flat[i:i+len(row)])
		}
	}
}

func cloneWeights(weights [][][]float64) [][][]float64 {
	out := make([][][]float64, len(weights))
	for l, layer := range weights {
		out[l] = make([][]float64, len(layer))
		for j, row := range layer {
			out[l][j] = append([]float64(nil), row...)
		}
	}
	return out
}

func copyWeights(dst, src [][][]float64) {
	for l := range src {
		for j := range src[l] {
			copy(dst[l][j], src[l][j])
		}
	}
}

func zeroWeights(weights [][][]float64) {
	for _, layer := range weights {
		for _, row := range layer {
			clear(row)
		}
	}
}

func cloneBools(mask [][][]bool) [][][]bool {
	out := make([][][]bool, len(mask))
	for l, layer := range mask {
		out[l] = make([][]bool, len(layer))
		for j, row := range layer {
			out[l][j] = append([]bool(nil), row...)
		}
	}
	return out
}

// forward fills values layer by layer; values[0] receives the raw input.
func forward(act ActivationFunc, weights [][][]float64, input []float64, values [][]float64) {
	copy(values[0], input)
	for l, layer := range weights {
		upstream := values[l]
		for j, row := range layer {
			total := row[0]
			for k, v := range upstream {
				total += row[k+1] * v
			}
			values[l+1][j] = act(total)
		}
	}
}
