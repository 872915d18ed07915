// Package hll is a Go implementation of the HyperLogLog cardinality estimator from
// "HyperLogLog: the analysis of a near-optimal cardinality estimation algorithm" by Flajolet,
// Fusy, Gandouet and Meunier. Given a stream of input elements, it estimates the number of
// unique items in the stream using a fixed amount of memory: 2^p registers of 6 bits each,
// however long the stream is. The estimation error is controlled by choosing p.
//
// We implement the classic formulation from the paper, with its bias correction constants and
// its small and large range corrections, and none of the later HyperLogLog++ refinements. The
// estimates therefore match what the paper's analysis predicts at every cardinality.
//
// Sketches built with the same precision and hasher can be merged. The merge is a registerwise
// maximum, so merging the sketches of two streams gives exactly the sketch of their union. This
// is the way to count in parallel: give each goroutine its own sketch and merge at the end. A
// single sketch must not be updated from several goroutines at once.
//
// The paper is available at http://algo.inria.fr/flajolet/Publications/FlFuGaMe07.pdf
package hll
