// Package fingerprint computes perceptual fingerprints of images.
//
// The average hash scales an image to a small square grid, compares each
// cell's luminance to the grid mean and packs the resulting bits into hex.
// Visually similar images produce fingerprints with a small Hamming
// distance.
package fingerprint
