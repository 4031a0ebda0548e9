package domain

const (
	// Gateway constants
	DEFAULT_PINATA_GATEWAY = "https://gateway.pinata.cloud"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)
