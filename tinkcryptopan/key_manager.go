// Package tinkcryptopan provides Tink integration for Crypto-PAn.
// This file contains the KeyManager implementation that registers Crypto-PAn with Tink's registry.
package tinkcryptopan

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	"github.com/vdparikh/cryptopan/subtle"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// CryptoPAnKeyTypeURL is the type URL for Crypto-PAn keys in Tink's registry.
	CryptoPAnKeyTypeURL = "type.googleapis.com/google.crypto.tink.CryptoPAnKey"
)

// KeyManager implements registry.KeyManager for Crypto-PAn keys.
// Serialized keys are google.protobuf.BytesValue messages holding the 32 raw
// key bytes.
type KeyManager struct {
	typeURL string
}

// NewKeyManager creates a new Crypto-PAn key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{
		typeURL: CryptoPAnKeyTypeURL,
	}
}

// Primitive creates a *subtle.KeyedContext from the given serialized key.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	key, err := unmarshalKey(serializedKey)
	if err != nil {
		return nil, err
	}
	ctx, err := subtle.NewKeyedContext(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create Crypto-PAn context: %w", err)
	}
	return ctx, nil
}

// DoesSupport returns true if this KeyManager supports the given key type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey generates a new random key according to the given key template.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	if err := validateTemplate(serializedKeyTemplate); err != nil {
		return nil, err
	}
	key := make([]byte, subtle.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}
	return wrapperspb.Bytes(key), nil
}

// NewKeyData creates a new KeyData from the given key template.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	key, err := km.NewKey(serializedKeyTemplate)
	if err != nil {
		return nil, err
	}
	value, err := proto.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize key: %w", err)
	}
	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           value,
		KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
	}, nil
}

// Verify that KeyManager implements registry.KeyManager
var _ registry.KeyManager = (*KeyManager)(nil)

// KeyTemplate creates a key template for Crypto-PAn keys.
// This allows users to generate keys with a single line:
//
//	handle, err := keyset.NewHandle(tinkcryptopan.KeyTemplate())
//
// Keys are always 32 bytes: an AES-128 key followed by the padding seed.
func KeyTemplate() *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          CryptoPAnKeyTypeURL,
		Value:            []byte{subtle.KeySize},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// NewKeysetHandleFromKey creates a keyset handle from a raw 32-byte key
// (e.g., from an HSM or a key shared with another Crypto-PAn implementation).
//
// Example:
//
//	handle, err := tinkcryptopan.NewKeysetHandleFromKey(key)
//	if err != nil {
//		log.Fatal(err)
//	}
//	anonymizer, err := tinkcryptopan.New(handle)
//
// Note: This creates an unencrypted keyset. In production, consider encrypting
// the keyset before storing it using keyset.Write() with an AEAD.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	if len(key) != subtle.KeySize {
		return nil, subtle.KeyLengthError(len(key))
	}

	keyIDBytes := make([]byte, 4)
	if _, err := rand.Read(keyIDBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	keyID := binary.BigEndian.Uint32(keyIDBytes)

	value, err := proto.Marshal(wrapperspb.Bytes(key))
	if err != nil {
		return nil, fmt.Errorf("failed to serialize key: %w", err)
	}

	keysetKey := &tink_go_proto.Keyset_Key{
		KeyData: &tink_go_proto.KeyData{
			TypeUrl:         CryptoPAnKeyTypeURL,
			Value:           value,
			KeyMaterialType: tink_go_proto.KeyData_SYMMETRIC,
		},
		KeyId:            keyID,
		Status:           tink_go_proto.KeyStatusType_ENABLED,
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key:          []*tink_go_proto.Keyset_Key{keysetKey},
	}

	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}

func unmarshalKey(serializedKey []byte) ([]byte, error) {
	if len(serializedKey) == 0 {
		return nil, fmt.Errorf("empty serialized key")
	}
	var key wrapperspb.BytesValue
	if err := proto.Unmarshal(serializedKey, &key); err != nil {
		return nil, fmt.Errorf("failed to parse key: %w", err)
	}
	return key.GetValue(), nil
}

func validateTemplate(serializedKeyTemplate []byte) error {
	if len(serializedKeyTemplate) == 0 {
		return nil
	}
	if len(serializedKeyTemplate) != 1 || int(serializedKeyTemplate[0]) != subtle.KeySize {
		return fmt.Errorf("invalid key template: %v (key size must be %d bytes)", serializedKeyTemplate, subtle.KeySize)
	}
	return nil
}
