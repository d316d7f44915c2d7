package constants

import "time"

const (
	AppName = "quantum-wallet-demo"

	UsersFile       = "users.json"
	SmartWalletFile = "smart_wallets.json"
	WalletDir       = "wallets"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	NativeAddr = "0x0000000000000000000000000000000000000000"

	// AAD for embedded wallet payloads (must match on decrypt).
	EmbeddedWalletAAD = "quantumauth:embedded-wallet:v1"
)

// Supported networks.
const (
	NetworkBase        = "base"
	NetworkBaseSepolia = "base-sepolia"

	ChainIDBase        uint64 = 8453
	ChainIDBaseSepolia uint64 = 84532
)

const (
	USDCDecimals  uint8 = 6
	EtherDecimals uint8 = 18

	CopyFeedbackDelay    = 2 * time.Second
	SignedMessagePreview = 50
)

// User-visible messages.
const (
	ErrSigningMessageText = "Error signing message"
	InsufficientUSDCText  = "Insufficient USDC balance"
	TransactionFailedText = "Transaction failed. Please try again."
	InvalidUSDCAmountText = "Invalid USDC amount"
	InvalidRecipientText  = "Invalid recipient address"
	TransferInFlightText  = "A transfer is already in progress"
)
