package utils

import (
	"github.com/matthewhartstonge/argon2"
)

// hashConfig is fixed at startup so every stored credential uses the same
// argon2id parameters.
var hashConfig = argon2.DefaultConfig()

func HashPassword(password string) (string, error) {
	encoded, err := hashConfig.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// VerifyPassword checks a plaintext password against a stored encoded hash.
// A mismatch is (false, nil); an error means the hash could not be parsed.
func VerifyPassword(encodedHash, password string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
