package crypto

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	private, err := NewPrivateKey()
	require.NoError(t, err)
	msg := []byte("buy paint")
	sig := private.Sign(msg)
	require.Len(t, sig, SignatureSize)
	require.True(t, private.PublicKey().VerifyBytes(msg, sig))
	require.False(t, private.PublicKey().VerifyBytes([]byte("buy ink"), sig))
	// a different key must not verify
	other, err := NewPrivateKey()
	require.NoError(t, err)
	require.False(t, other.PublicKey().VerifyBytes(msg, sig))
}

func TestPublicKeyFromBytes(t *testing.T) {
	private, err := NewPrivateKey()
	require.NoError(t, err)
	pub := private.PublicKey()
	require.Len(t, pub.Bytes(), PublicKeySize)
	got, err := NewPublicKeyFromBytes(pub.Bytes())
	require.NoError(t, err)
	require.True(t, pub.Equals(got))
	require.True(t, pub.Address().Equals(got.Address()))
	_, err = NewPublicKeyFromBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestNewAddress(t *testing.T) {
	tests := []struct {
		name    string
		detail  string
		input   []byte
		wantErr bool
	}{
		{
			name:   "valid",
			detail: "20 bytes is a valid address",
			input:  make([]byte, AddressSize),
		},
		{
			name:    "short",
			detail:  "19 bytes is rejected",
			input:   make([]byte, AddressSize-1),
			wantErr: true,
		},
		{
			name:    "long",
			detail:  "21 bytes is rejected",
			input:   make([]byte, AddressSize+1),
			wantErr: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NewAddress(test.input)
			if test.wantErr {
				require.Error(t, err, test.detail)
				return
			}
			require.NoError(t, err, test.detail)
			require.Equal(t, test.input, got.Bytes())
		})
	}
}

func TestAddressJSON(t *testing.T) {
	a, err := NewAddressFromString("00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	bz, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `"00000000000000000000000000000000000000aa"`, string(bz))
	got := new(Address)
	require.NoError(t, json.Unmarshal(bz, got))
	require.True(t, a.Equals(got))
}

func TestCreateAddress(t *testing.T) {
	// well known vector: the first contract created by 0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0
	deployer, err := NewAddressFromString("6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")
	require.NoError(t, err)
	require.Equal(t, "cd234a471b72ba2f1ccf0a70fcaba648a5eecd8d", CreateAddress(deployer, 0).String())
	require.Equal(t, "343c43a37d37dff08ae8c4a11544c718abb4fcf8", CreateAddress(deployer, 1).String())
	// derivation is deterministic and unique per nonce
	require.True(t, CreateAddress(deployer, 7).Equals(CreateAddress(deployer, 7)))
	require.False(t, CreateAddress(deployer, 7).Equals(CreateAddress(deployer, 8)))
}

func TestKeystore(t *testing.T) {
	password := "password"
	private, err := NewPrivateKey()
	require.NoError(t, err)
	ks := NewKeystoreInMemory()
	address, err := ks.ImportRaw(private.Bytes(), password, "alice")
	require.NoError(t, err)
	require.Equal(t, private.PublicKey().Address().String(), address)
	addrBz, err := hex.DecodeString(address)
	require.NoError(t, err)
	// by address
	got, err := ks.GetKey(addrBz, password)
	require.NoError(t, err)
	require.True(t, private.Equals(got))
	// by nickname
	got, err = ks.GetKeyByNickname("alice", password)
	require.NoError(t, err)
	require.True(t, private.Equals(got))
	// wrong password
	_, err = ks.GetKey(addrBz, "wrong")
	require.ErrorIs(t, err, ErrInvalidPassword)
	// duplicate nickname
	other, err := NewPrivateKey()
	require.NoError(t, err)
	_, err = ks.ImportRaw(other.Bytes(), password, "alice")
	require.ErrorIs(t, err, ErrNicknameTaken)
	// file round trip
	dir := t.TempDir()
	require.NoError(t, ks.SaveToFile(dir))
	loaded, err := NewKeystoreFromFile(dir)
	require.NoError(t, err)
	require.Equal(t, []string{address}, loaded.Addresses())
	// delete removes the nickname too
	loaded.DeleteKey(addrBz)
	_, err = loaded.GetKeyByNickname("alice", password)
	require.ErrorIs(t, err, ErrKeyNotFound)
}
