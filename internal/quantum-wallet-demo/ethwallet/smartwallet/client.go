package smartwallet

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/chains"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/wtypes"
)

var (
	ErrNoOwner         = errors.New("smart wallet has no owner")
	ErrNoFeeData       = errors.New("unable to determine fees")
	ErrUserOpReverted  = errors.New("user operation reverted")
	ErrAccountNotFound = errors.New("factory returned zero account address")
)

const (
	defaultVerificationGas = 150_000
	deployVerificationGas  = 400_000
	defaultCallGas         = 200_000
	defaultPreVerification = 60_000
	handleOpsOverhead      = 100_000
)

// ChainSource is the part of the chain service the smart wallet needs.
type ChainSource interface {
	ActiveChain() (chains.ResolvedChain, error)
	ActiveHTTP(ctx context.Context) (chains.EVMClient, error)
}

// BundlerClient is satisfied by *rpc.Client.
type BundlerClient interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

type BundlerDialer func(ctx context.Context, url string) (BundlerClient, error)

func dialBundler(ctx context.Context, url string) (BundlerClient, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type FactoryConfig struct {
	Factory    common.Address
	Salt       *big.Int
	BundlerURL string

	// ReceiptTimeout bounds how long SendTransaction waits for inclusion.
	ReceiptTimeout      time.Duration
	ReceiptPollInterval time.Duration

	Store *Store
	Dial  BundlerDialer
}

// Factory derives SimpleAccount smart wallets for an owner on the active chain.
type Factory struct {
	chains ChainSource
	cfg    FactoryConfig
}

func NewFactory(chainSource ChainSource, cfg FactoryConfig) (*Factory, error) {
	if chainSource == nil {
		return nil, errors.New("smartwallet: chain source is nil")
	}
	if cfg.Factory == (common.Address{}) {
		cfg.Factory = common.HexToAddress(SimpleAccountFactory)
	}
	if cfg.Salt == nil {
		cfg.Salt = new(big.Int)
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 2 * time.Minute
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = dialBundler
	}
	cfg.BundlerURL = strings.TrimSpace(cfg.BundlerURL)
	return &Factory{chains: chainSource, cfg: cfg}, nil
}

// Connect resolves the counterfactual account address for owner.
func (f *Factory) Connect(ctx context.Context, owner wtypes.Wallet) (*Client, error) {
	if owner == nil {
		return nil, ErrNoOwner
	}

	chain, err := f.chains.ActiveChain()
	if err != nil {
		return nil, err
	}
	ownerAddr := owner.Address()
	salt := f.cfg.Salt.String()

	if f.cfg.Store != nil {
		addr, err := f.cfg.Store.Lookup(chain.ChainID, ownerAddr, f.cfg.Factory, salt)
		if err == nil {
			return f.newClient(owner, addr), nil
		}
		if !errors.Is(err, ErrAccountNotCached) {
			log.Warn("smart account cache unreadable", "path", f.cfg.Store.Path, "error", err)
		}
	}

	client, err := f.chains.ActiveHTTP(ctx)
	if err != nil {
		return nil, err
	}
	addr, err := f.accountAddress(ctx, client, ownerAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "derive smart account on %s", chain.NetworkName)
	}

	if f.cfg.Store != nil {
		if err := f.cfg.Store.Save(chain.ChainID, ownerAddr, f.cfg.Factory, salt, addr); err != nil {
			log.Warn("failed to cache smart account", "error", err)
		}
	}

	log.Info("smart wallet connected", "network", chain.NetworkName, "owner", ownerAddr.Hex(), "address", addr.Hex())
	return f.newClient(owner, addr), nil
}

func (f *Factory) newClient(owner wtypes.Wallet, addr common.Address) *Client {
	return &Client{factory: f, owner: owner, address: addr}
}

func (f *Factory) accountAddress(ctx context.Context, client chains.EVMClient, owner common.Address) (common.Address, error) {
	parsed, err := factoryABI.get()
	if err != nil {
		return common.Address{}, err
	}
	input, err := parsed.Pack("getAddress", owner, f.cfg.Salt)
	if err != nil {
		return common.Address{}, err
	}
	to := f.cfg.Factory
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "factory getAddress")
	}
	values, err := parsed.Unpack("getAddress", out)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "unpack getAddress")
	}
	addr, ok := values[0].(common.Address)
	if !ok || addr == (common.Address{}) {
		return common.Address{}, ErrAccountNotFound
	}
	return addr, nil
}

// Client is a connected smart wallet. Calls always target the active chain.
type Client struct {
	factory *Factory
	owner   wtypes.Wallet
	address common.Address
}

func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) Owner() common.Address {
	return c.owner.Address()
}

// SignMessage returns the owner's personal_sign signature over text as 0x hex.
func (c *Client) SignMessage(ctx context.Context, text string) (string, error) {
	sig, err := wtypes.PersonalSign(ctx, c.owner, []byte(text))
	if err != nil {
		return "", errors.Wrap(err, "sign message")
	}
	return hexutil.Encode(sig), nil
}

// SendTransaction executes call from the smart account and returns the inclusion tx hash.
func (c *Client) SendTransaction(ctx context.Context, call Call) (common.Hash, error) {
	f := c.factory
	chain, err := f.chains.ActiveChain()
	if err != nil {
		return common.Hash{}, err
	}
	client, err := f.chains.ActiveHTTP(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	entryPoint := common.HexToAddress(EntryPointV07)
	if common.IsHexAddress(chain.EntryPoint) {
		entryPoint = common.HexToAddress(chain.EntryPoint)
	}

	op, err := c.buildUserOp(ctx, client, entryPoint, call)
	if err != nil {
		return common.Hash{}, err
	}

	opHash, err := userOpHash(ctx, client, entryPoint, op)
	if err != nil {
		return common.Hash{}, err
	}
	sig, err := wtypes.PersonalSign(ctx, c.owner, opHash[:])
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign user operation")
	}
	op.Signature = sig

	log.Info("submitting user operation",
		"network", chain.NetworkName,
		"sender", op.Sender.Hex(),
		"nonce", op.Nonce.String(),
		"userOpHash", opHash.Hex(),
		"deploy", op.Factory != nil,
	)

	if f.cfg.BundlerURL != "" {
		return c.sendViaBundler(ctx, entryPoint, op)
	}
	return c.selfBundle(ctx, client, chain, entryPoint, op)
}

func (c *Client) buildUserOp(ctx context.Context, client chains.EVMClient, entryPoint common.Address, call Call) (*UserOperation, error) {
	f := c.factory

	callData, err := ExecuteCalldata(call)
	if err != nil {
		return nil, errors.Wrap(err, "encode execute")
	}

	nonce, err := accountNonce(ctx, client, entryPoint, c.address)
	if err != nil {
		return nil, err
	}

	op := &UserOperation{
		Sender:               c.address,
		Nonce:                nonce,
		CallData:             callData,
		VerificationGasLimit: big.NewInt(defaultVerificationGas),
		PreVerificationGas:   big.NewInt(defaultPreVerification),
	}

	code, err := client.CodeAt(ctx, c.address, nil)
	if err != nil {
		return nil, errors.Wrap(err, "account code")
	}
	if len(code) == 0 {
		parsed, err := factoryABI.get()
		if err != nil {
			return nil, err
		}
		factoryData, err := parsed.Pack("createAccount", c.owner.Address(), f.cfg.Salt)
		if err != nil {
			return nil, err
		}
		factory := f.cfg.Factory
		op.Factory = &factory
		op.FactoryData = factoryData
		op.VerificationGasLimit = big.NewInt(deployVerificationGas)
	}

	op.CallGasLimit = callGasLimit(ctx, client, c.address, call)

	maxFee, maxPrio, err := userOpFees(ctx, client)
	if err != nil {
		return nil, err
	}
	op.MaxFeePerGas = maxFee
	op.MaxPriorityFeePerGas = maxPrio
	return op, nil
}

func accountNonce(ctx context.Context, client chains.EVMClient, entryPoint, sender common.Address) (*big.Int, error) {
	parsed, err := entryPointABI.get()
	if err != nil {
		return nil, err
	}
	input, err := parsed.Pack("getNonce", sender, new(big.Int))
	if err != nil {
		return nil, err
	}
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &entryPoint, Data: input}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "entrypoint getNonce")
	}
	values, err := parsed.Unpack("getNonce", out)
	if err != nil {
		return nil, errors.Wrap(err, "unpack getNonce")
	}
	nonce, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.Newf("unexpected getNonce type %T", values[0])
	}
	return nonce, nil
}

func userOpHash(ctx context.Context, client chains.EVMClient, entryPoint common.Address, op *UserOperation) (common.Hash, error) {
	parsed, err := entryPointABI.get()
	if err != nil {
		return common.Hash{}, err
	}
	input, err := parsed.Pack("getUserOpHash", op.Pack())
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "pack getUserOpHash")
	}
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &entryPoint, Data: input}, nil)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "entrypoint getUserOpHash")
	}
	values, err := parsed.Unpack("getUserOpHash", out)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "unpack getUserOpHash")
	}
	h, ok := values[0].([32]byte)
	if !ok {
		return common.Hash{}, errors.Newf("unexpected getUserOpHash type %T", values[0])
	}
	return common.Hash(h), nil
}

type userOpReceipt struct {
	Success bool `json:"success"`
	Receipt struct {
		TransactionHash common.Hash `json:"transactionHash"`
	} `json:"receipt"`
}

func (c *Client) sendViaBundler(ctx context.Context, entryPoint common.Address, op *UserOperation) (common.Hash, error) {
	f := c.factory
	bundler, err := f.cfg.Dial(ctx, f.cfg.BundlerURL)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "dial bundler")
	}
	defer bundler.Close()

	var opHash common.Hash
	if err := bundler.CallContext(ctx, &opHash, "eth_sendUserOperation", op.RPC(), entryPoint); err != nil {
		return common.Hash{}, errors.Wrap(err, "eth_sendUserOperation")
	}

	var receipt *userOpReceipt
	err = f.poll(ctx, func() error {
		var r *userOpReceipt
		if err := bundler.CallContext(ctx, &r, "eth_getUserOperationReceipt", opHash); err != nil {
			return err
		}
		if r == nil {
			return ethereum.NotFound
		}
		receipt = r
		return nil
	})
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "wait for user operation %s", opHash.Hex())
	}
	if !receipt.Success {
		return receipt.Receipt.TransactionHash, errors.Wrapf(ErrUserOpReverted, "tx %s", receipt.Receipt.TransactionHash.Hex())
	}
	return receipt.Receipt.TransactionHash, nil
}

// selfBundle submits handleOps([op], owner) from the owner EOA, which pays the gas.
func (c *Client) selfBundle(ctx context.Context, client chains.EVMClient, chain chains.ResolvedChain, entryPoint common.Address, op *UserOperation) (common.Hash, error) {
	parsed, err := entryPointABI.get()
	if err != nil {
		return common.Hash{}, err
	}
	owner := c.owner.Address()
	data, err := parsed.Pack("handleOps", []PackedUserOperation{op.Pack()}, owner)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "pack handleOps")
	}

	key, err := c.owner.ExportPrivateKey(ctx)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "owner key")
	}

	nonce, err := client.PendingNonceAt(ctx, owner)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "owner nonce")
	}

	gas := new(big.Int).Add(op.VerificationGasLimit, op.CallGasLimit)
	gas.Add(gas, op.PreVerificationGas)
	gas.Add(gas, big.NewInt(handleOpsOverhead))

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   new(big.Int).SetUint64(chain.ChainID),
		Nonce:     nonce,
		GasTipCap: op.MaxPriorityFeePerGas,
		GasFeeCap: op.MaxFeePerGas,
		Gas:       gas.Uint64(),
		To:        &entryPoint,
		Value:     new(big.Int),
		Data:      data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(new(big.Int).SetUint64(chain.ChainID)), key)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "sign handleOps")
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, errors.Wrap(err, "send handleOps")
	}
	log.Info("handleOps sent", "network", chain.NetworkName, "tx", signed.Hash().Hex())

	var receipt *types.Receipt
	err = c.factory.poll(ctx, func() error {
		r, err := client.TransactionReceipt(ctx, signed.Hash())
		if err != nil {
			return err
		}
		receipt = r
		return nil
	})
	if err != nil {
		return signed.Hash(), errors.Wrapf(err, "wait for tx %s", signed.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return signed.Hash(), errors.Wrapf(ErrUserOpReverted, "tx %s", signed.Hash().Hex())
	}
	return signed.Hash(), nil
}

func (f *Factory) poll(ctx context.Context, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.cfg.ReceiptPollInterval
	policy.MaxInterval = 8 * f.cfg.ReceiptPollInterval
	policy.MaxElapsedTime = f.cfg.ReceiptTimeout

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.Warn("receipt poll failed", "error", err)
		}
		return err
	}, backoff.WithContext(policy, ctx))
}
