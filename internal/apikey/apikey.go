package apikey

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	keyPrefix  = "cm_live_"
	prefixSize = 12
)

// Generate devolve a chave em texto puro (mostrada uma única vez), o prefixo
// exibido na listagem e o hash que vai para o banco.
func Generate() (plain, prefix, hash string, err error) {
	buf := make([]byte, 24)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}

	plain = keyPrefix + hex.EncodeToString(buf)
	return plain, plain[:prefixSize], Hash(plain), nil
}

func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
