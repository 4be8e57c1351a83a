package doa

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var errEigen = errors.New("doa: eigendecomposition did not converge")

// covariance averages the outer products x xᴴ of the snapshots of one bin
func covariance(snapshots [][]complex128) *mat.CDense {
	m := len(snapshots[0])
	r := mat.NewCDense(m, m, nil)
	for _, x := range snapshots {
		for i := 0; i < m; i++ {
			for j := 0; j < m; j++ {
				r.Set(i, j, r.At(i, j)+x[i]*cmplx.Conj(x[j]))
			}
		}
	}
	scale := complex(1/float64(len(snapshots)), 0)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			r.Set(i, j, r.At(i, j)*scale)
		}
	}
	return r
}

// eigenHermitian decomposes the Hermitian matrix h through its real symmetric
// embedding [[A, -B], [B, A]], h = A + jB. Every eigenvalue of h appears twice in
// the embedding. Values are ascending; each column of vectors is the complex vector
// read back from one column of the embedding, in the same order.
func eigenHermitian(h *mat.CDense) ([]float64, [][]complex128, error) {
	n, _ := h.Dims()
	sym := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := h.At(i, j)
			a, b := real(v), imag(v)
			if i == j {
				b = 0
			}
			sym.SetSym(i, j, a)
			sym.SetSym(n+i, n+j, a)
			// Lower-left block is B, upper-right is -B
			sym.SetSym(i, n+j, -b)
			if i != j {
				sym.SetSym(j, n+i, b)
			}
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(sym, true); !ok {
		return nil, nil, errEigen
	}
	values := es.Values(nil)
	var ev mat.Dense
	es.VectorsTo(&ev)

	vectors := make([][]complex128, 2*n)
	for c := range vectors {
		v := make([]complex128, n)
		for i := range v {
			v[i] = complex(ev.At(i, c), ev.At(n+i, c))
		}
		vectors[c] = v
	}
	return values, vectors, nil
}

// orthonormalize runs complex Gram-Schmidt over vs and keeps at most limit vectors
func orthonormalize(vs [][]complex128, limit int) [][]complex128 {
	var basis [][]complex128
	for _, v := range vs {
		if len(basis) == limit {
			break
		}
		u := append([]complex128(nil), v...)
		for _, b := range basis {
			p := inner(b, u)
			for i := range u {
				u[i] -= p * b[i]
			}
		}
		norm := math.Sqrt(real(inner(u, u)))
		if norm < 1e-8 {
			continue
		}
		for i := range u {
			u[i] /= complex(norm, 0)
		}
		basis = append(basis, u)
	}
	return basis
}

// inner is aᴴb
func inner(a, b []complex128) complex128 {
	var s complex128
	for i := range a {
		s += cmplx.Conj(a[i]) * b[i]
	}
	return s
}

// subspaces splits the eigenvectors of h into the signal subspace of its k largest
// eigenvalues and the noise subspace of the rest
func subspaces(h *mat.CDense, k int) (signal, noise [][]complex128, err error) {
	n, _ := h.Dims()
	_, vectors, err := eigenHermitian(h)
	if err != nil {
		return nil, nil, err
	}
	noise = orthonormalize(vectors[:2*(n-k)], n-k)
	signal = orthonormalize(vectors[2*(n-k):], k)
	return signal, noise, nil
}

// smallestEigenvalue of a small Hermitian matrix
func smallestEigenvalue(h *mat.CDense) (float64, error) {
	values, _, err := eigenHermitian(h)
	if err != nil {
		return 0, err
	}
	return values[0], nil
}
