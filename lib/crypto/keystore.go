package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/argon2"
)

const (
	KeyStoreName = "keystore.json"
)

var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrNicknameTaken   = errors.New("nickname already in use")
)

// Keystore represents a lightweight database of encrypted member keys, indexed by address and nickname
type Keystore struct {
	ByAddress  map[string]*EncryptedPrivateKey `json:"byAddress"`
	ByNickname map[string]string               `json:"byNickname"` // nickname -> hex address
}

// NewKeystoreInMemory() creates a new in memory keystore
func NewKeystoreInMemory() *Keystore {
	return &Keystore{
		ByAddress:  make(map[string]*EncryptedPrivateKey),
		ByNickname: make(map[string]string),
	}
}

// NewKeystoreFromFile() loads the keystore from the data directory, an absent file yields an empty keystore
func NewKeystoreFromFile(dataDirPath string) (*Keystore, error) {
	path := filepath.Join(dataDirPath, KeyStoreName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return NewKeystoreInMemory(), nil
	}
	ksBz, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ks := NewKeystoreInMemory()
	if err = json.Unmarshal(ksBz, ks); err != nil {
		return nil, err
	}
	if ks.ByNickname == nil {
		ks.ByNickname = make(map[string]string)
	}
	return ks, nil
}

// ImportRaw() encrypts a raw private key with the password and adds it to the store
func (ks *Keystore) ImportRaw(privateKeyBytes []byte, password, nickname string) (address string, err error) {
	if password == "" {
		return "", ErrInvalidPassword
	}
	if _, taken := ks.ByNickname[nickname]; nickname != "" && taken {
		return "", ErrNicknameTaken
	}
	privateKey, err := NewPrivateKeyFromBytes(privateKeyBytes)
	if err != nil {
		return
	}
	publicKey := privateKey.PublicKey()
	encrypted, err := EncryptPrivateKey(publicKey.Bytes(), privateKeyBytes, []byte(password))
	if err != nil {
		return
	}
	encrypted.Nickname = nickname
	address = publicKey.Address().String()
	ks.ByAddress[address] = encrypted
	if nickname != "" {
		ks.ByNickname[nickname] = address
	}
	return
}

// GetKey() decrypts the private key stored under the address
func (ks *Keystore) GetKey(address []byte, password string) (PrivateKeyI, error) {
	v, ok := ks.ByAddress[hex.EncodeToString(address)]
	if !ok {
		return nil, ErrKeyNotFound
	}
	if password == "" {
		return nil, ErrInvalidPassword
	}
	return DecryptPrivateKey(v, []byte(password))
}

// GetKeyByNickname() decrypts the private key stored under the nickname
func (ks *Keystore) GetKeyByNickname(nickname, password string) (PrivateKeyI, error) {
	address, ok := ks.ByNickname[nickname]
	if !ok {
		return nil, ErrKeyNotFound
	}
	bz, err := hex.DecodeString(address)
	if err != nil {
		return nil, err
	}
	return ks.GetKey(bz, password)
}

// DeleteKey() removes a private key and its nickname from the store
func (ks *Keystore) DeleteKey(address []byte) {
	addr := hex.EncodeToString(address)
	if v, ok := ks.ByAddress[addr]; ok && v.Nickname != "" {
		delete(ks.ByNickname, v.Nickname)
	}
	delete(ks.ByAddress, addr)
}

// Addresses() lists the stored addresses in lexicographical order
func (ks *Keystore) Addresses() (list []string) {
	for a := range ks.ByAddress {
		list = append(list, a)
	}
	sort.Strings(list)
	return
}

// SaveToFile() persists the keystore to the data directory
func (ks *Keystore) SaveToFile(dataDirPath string) error {
	bz, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDirPath, KeyStoreName), bz, 0600)
}

// EncryptedPrivateKey represents an encrypted form of a private key, including the public key,
// salt used in key derivation, and the encrypted private key itself
type EncryptedPrivateKey struct {
	PublicKey string `json:"publicKey"`
	Salt      string `json:"salt"`
	Encrypted string `json:"encrypted"`
	Nickname  string `json:"nickname,omitempty"`
}

// EncryptPrivateKey() creates an encrypted private key by generating a random salt
// and deriving an encryption key with the KDF, and finally encrypting key using AES-GCM
func EncryptPrivateKey(publicKey, privateKey, password []byte) (*EncryptedPrivateKey, error) {
	// generate random 16 bytes salt
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	gcm, nonce, err := kdf(password, salt)
	if err != nil {
		return nil, err
	}
	return &EncryptedPrivateKey{
		PublicKey: hex.EncodeToString(publicKey),
		Salt:      hex.EncodeToString(salt),
		Encrypted: hex.EncodeToString(gcm.Seal(nil, nonce, privateKey, nil)),
	}, nil
}

// DecryptPrivateKey() takes an EncryptedPrivateKey and decrypts it using the password
func DecryptPrivateKey(epk *EncryptedPrivateKey, password []byte) (PrivateKeyI, error) {
	salt, err := hex.DecodeString(epk.Salt)
	if err != nil {
		return nil, err
	}
	encrypted, err := hex.DecodeString(epk.Encrypted)
	if err != nil {
		return nil, err
	}
	gcm, nonce, err := kdf(password, salt)
	if err != nil {
		return nil, err
	}
	plainText, err := gcm.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPassword, err.Error())
	}
	return NewPrivateKeyFromBytes(plainText)
}

// kdf() derives an AES-GCM cipher and a 12-byte nonce from a password and salt using Argon2
func kdf(password, salt []byte) (gcm cipher.AEAD, nonce []byte, err error) {
	key := argon2.Key(password, salt, 3, 32*1024, 4, 32)
	block, err := aes.NewCipher(key)
	if err != nil {
		return
	}
	if gcm, err = cipher.NewGCM(block); err != nil {
		return
	}
	return gcm, key[:12], nil
}
