package packet

// Client → server opcodes. All are one-way requests the server re-validates.
const (
	C_OPCODE_LOGIN        byte = 0x01
	C_OPCODE_ENTER_WORLD  byte = 0x02
	C_OPCODE_MOVE         byte = 0x03 // destination request
	C_OPCODE_SET_VELOCITY byte = 0x04
	C_OPCODE_USE_SKILL    byte = 0x05
	C_OPCODE_SET_TARGET   byte = 0x06
	C_OPCODE_CANCEL       byte = 0x07
	C_OPCODE_RESPAWN      byte = 0x08
	C_OPCODE_CRAFT        byte = 0x09
	C_OPCODE_QUIT         byte = 0x0A
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_RESULT byte = 0x81
	S_OPCODE_ENTER_WORLD  byte = 0x82
	S_OPCODE_SNAPSHOT     byte = 0x83 // latest-wins actor replication
	S_OPCODE_REMOVE_ACTOR byte = 0x84
	S_OPCODE_DEATH        byte = 0x85
	S_OPCODE_LEVEL_UP     byte = 0x86
	S_OPCODE_EXP_UPDATE   byte = 0x87
	S_OPCODE_MESSAGE      byte = 0x88
)
