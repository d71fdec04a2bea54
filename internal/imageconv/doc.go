// Package imageconv re-encodes a single image file with a quality and an
// optional maximum dimension.
//
// Magick shells out to ImageMagick and can write any format it supports,
// webp included. Imaging is the pure Go engine and writes jpeg or png.
package imageconv
