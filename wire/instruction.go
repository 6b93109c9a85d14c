package wire

import (
	"crypto/sha256"

	"github.com/fedwallet/walletgate/core"
)

// Instruction opcodes for the delegation directory.
const (
	OpRegister   byte = 0x01
	OpUnregister byte = 0x02
)

// recordSeed is the namespace tag mixed into record address derivation.
const recordSeed = "delegation"

// RecordBump is the derivation bump stored in every record, reserved for
// future re-derivation schemes.
const RecordBump uint8 = 1

// DeriveRecordAddress computes the ledger address of an owner's delegation
// record: sha256(seed || owner || bump). Purely derived, so any reader can
// locate a wallet's record without an index.
func DeriveRecordAddress(owner [core.PublicKeySize]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte(recordSeed))
	h.Write(owner[:])
	h.Write([]byte{RecordBump})
	var addr [32]byte
	h.Sum(addr[:0])
	return addr
}

// EncodeRegisterInstruction produces the byte string an owner signs to
// register or update their delegation:
// [opcode][32-byte owner][4-byte LE length][endpoint].
func EncodeRegisterInstruction(owner [core.PublicKeySize]byte, endpoint string) []byte {
	buf := make([]byte, 0, 1+core.PublicKeySize+4+len(endpoint))
	buf = append(buf, OpRegister)
	buf = append(buf, owner[:]...)
	return AppendString(buf, endpoint)
}

// EncodeUnregisterInstruction produces the byte string an owner signs to
// remove their delegation: [opcode][32-byte owner].
func EncodeUnregisterInstruction(owner [core.PublicKeySize]byte) []byte {
	buf := make([]byte, 0, 1+core.PublicKeySize)
	buf = append(buf, OpUnregister)
	return append(buf, owner[:]...)
}
