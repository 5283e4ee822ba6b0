package serialize

// Prefix is the one-byte consensus-buffer type tag, exactly the table in
// the specification (and TypePrefix in the original implementation).
type Prefix byte

const (
	PrefixInt               Prefix = 0x00
	PrefixUint              Prefix = 0x01
	PrefixBuffer            Prefix = 0x02
	PrefixBoolTrue          Prefix = 0x03
	PrefixBoolFalse         Prefix = 0x04
	PrefixStandardPrincipal Prefix = 0x05
	PrefixContractPrincipal Prefix = 0x06
	PrefixResponseOk        Prefix = 0x07
	PrefixResponseErr       Prefix = 0x08
	PrefixOptionalNone      Prefix = 0x09
	PrefixOptionalSome      Prefix = 0x0a
	PrefixList              Prefix = 0x0b
	PrefixTuple             Prefix = 0x0c
	PrefixStringASCII       Prefix = 0x0d
	PrefixStringUTF8        Prefix = 0x0e
)

// principalVersionMin/Max bound the one-byte version field the deserializer
// validates; 0x00-0x1f covers every mainnet/testnet single/multisig version
// byte the source language's principal-construct? accepts.
const (
	principalVersionMin = 0x00
	principalVersionMax = 0x1f

	asciiMin = 0x20
	asciiMax = 0x7e

	contractNameMax = 128
)
