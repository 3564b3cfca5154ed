package bytecode

import "errors"

var (
	ErrBadOpcode        = errors.New("bytecode: invalid opcode")
	ErrBadTarget        = errors.New("bytecode: branch target is not an instruction boundary")
	ErrBadRange         = errors.New("bytecode: code range does not fall on instruction boundaries")
	ErrTrailingCode     = errors.New("bytecode: trailing data in Code attribute")
	ErrBranchOutOfRange = errors.New("bytecode: conditional branch offset out of range")
	ErrCodeTooLarge     = errors.New("bytecode: code exceeds 65535 bytes")
	ErrBadEdit          = errors.New("bytecode: edit out of range")
)
