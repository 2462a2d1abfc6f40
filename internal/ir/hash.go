package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix leaves
// room to migrate the algorithm.
const (
	DomainDecl     = "enumex/decl/v1"
	DomainRegistry = "enumex/registry/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data). The null separator
// keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// DeclHash computes the content-addressed identity of a declaration. It is
// stable across runs and independent of field order in the source.
func DeclHash(d EnumDecl) (string, error) {
	canonical, err := MarshalCanonical(d.IRObject())
	if err != nil {
		return "", fmt.Errorf("DeclHash %s: failed to marshal: %w", d.Name, err)
	}
	return hashWithDomain(DomainDecl, canonical), nil
}

// RegistryHash identifies a set of declarations by their ordered hashes.
func RegistryHash(decls []EnumDecl) (string, error) {
	hashes := make(IRArray, len(decls))
	for i, d := range decls {
		h, err := DeclHash(d)
		if err != nil {
			return "", err
		}
		hashes[i] = IRString(h)
	}
	canonical, err := MarshalCanonical(hashes)
	if err != nil {
		return "", fmt.Errorf("RegistryHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRegistry, canonical), nil
}

// MustDeclHash is like DeclHash but panics on error.
// Use only in tests or when the declaration is known to be valid.
func MustDeclHash(d EnumDecl) string {
	h, err := DeclHash(d)
	if err != nil {
		panic(err)
	}
	return h
}
