// Package prefixcode implements statistical prefix codes for text
// compression.  A frequency Model of tokens is turned into an Encoding by one
// of four classical code construction schemes (balanced tree, Shannon, Fano
// and Huffman), and token streams are packed into, and parsed back out of, a
// bit-exact byte stream.
//
// No codeword is ever all zero bits.  That reserved pattern is what lets a
// Parser tell the zero padding at the end of a packed stream apart from real
// codewords without a length field.
//
// References:
//
//     <https://en.wikipedia.org/wiki/Prefix_code>
//
//     <https://en.wikipedia.org/wiki/Shannon_coding>
//
//     <https://en.wikipedia.org/wiki/Shannon%E2%80%93Fano_coding>
//
//     <https://en.wikipedia.org/wiki/Huffman_coding>
//
package prefixcode
