/*
Package codec implements the Erlang External Term Format (ETF), the binary
encoding used by Erlang distribution, port messages and term_to_binary.

A message is the version byte 131, an optional compressed wrapper (tag 80, a
4-byte declared decompressed length, and a zlib stream), and one term. Each
term is a tag byte followed by a tag-specific payload; container terms nest
recursively. See the tag constants in this package for the full table.

The easiest way to use this package is Unmarshal and Marshal:

	value, rest, err := codec.Unmarshal(data, nil)

	data, err := codec.Marshal(term.Tuple{term.Atom("ok"), int64(42)}, nil)

Decoded values use the Go types documented on term.Term. The atoms 'true',
'false' and 'undefined' fold to true, false and nil in both directions.

Options control atom and byte-string representation, install per-kind decode
and encode hooks, and inject a Resolver for host-specific construction of
atoms, pids, references, funs and improper lists. For repeated work construct
a Decoder or Encoder once with the same options; instances cache resolved
constructors and must not be shared across concurrent calls.

Decoding is strict: the first malformed or truncated field aborts the whole
call with a typed error and no partial result. Recursion depth equals term
nesting depth, so pathologically deep input can exhaust the call stack.
*/
package codec
