package aifadian

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// RemarkPayload is the correlation tuple round-tripped through Aifadian's
// free-text remark field. The version field lets future fields be added
// without breaking in-flight orders.
type RemarkPayload struct {
	Version     int    `json:"v"`
	Email       string `json:"email"`
	ProductID   string `json:"productId"`
	IncreaseDay int    `json:"increaseDay"`
	OrderID     string `json:"orderId"`
}

const remarkVersion = 1

func (p RemarkPayload) Empty() bool {
	return p.Email == "" && p.ProductID == "" && p.OrderID == ""
}

// deriveKeyIV pads the shared secret with '0' to 32 bytes; the IV is the hex
// md5 of the padded key truncated to 16 bytes. Must match the sender exactly,
// the remark is opaque to Aifadian.
func deriveKeyIV(key string) ([]byte, []byte) {
	padded := []byte(key)
	for len(padded) < 32 {
		padded = append(padded, '0')
	}
	padded = padded[:32]

	sum := md5.Sum(padded)
	iv := []byte(hex.EncodeToString(sum[:]))[:16]
	return padded, iv
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	for i := 0; i < padding; i++ {
		data = append(data, byte(padding))
	}
	return data
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}

func aesEncrypt(key, plaintext string) (string, error) {
	k, iv := deriveKeyIV(key)
	block, err := aes.NewCipher(k)
	if err != nil {
		return "", err
	}
	data := pkcs7Pad([]byte(plaintext), block.BlockSize())
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return hex.EncodeToString(out), nil
}

func aesDecrypt(key, encrypted string) (string, error) {
	k, iv := deriveKeyIV(key)
	block, err := aes.NewCipher(k)
	if err != nil {
		return "", err
	}
	data, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return "", errors.New("invalid ciphertext length")
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	plain, err := pkcs7Unpad(out, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptRemark serializes and encrypts the correlation tuple for embedding
// in an order-creation URL.
func EncryptRemark(key string, payload RemarkPayload) (string, error) {
	payload.Version = remarkVersion
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return aesEncrypt(key, string(raw))
}

// DecryptRemark recovers the correlation tuple from a webhook's remark field.
// Any failure degrades to the empty tuple: a malformed remark cannot be fixed
// by provider retries, so the webhook must still be acknowledged.
func DecryptRemark(key, data string) RemarkPayload {
	if data == "" {
		return RemarkPayload{}
	}
	plain, err := aesDecrypt(key, data)
	if err != nil {
		return RemarkPayload{}
	}
	var payload RemarkPayload
	if err := json.Unmarshal([]byte(plain), &payload); err != nil {
		return RemarkPayload{}
	}
	return payload
}
