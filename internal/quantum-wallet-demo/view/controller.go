package view

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/assets"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/ethwallet/smartwallet"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/session"
	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/utils"
)

var (
	ErrNotReady         = errors.New("session provider not ready")
	ErrNoSmartWallet    = errors.New("no smart account client")
	ErrNothingToSign    = errors.New("message is empty")
	ErrNothingToCopy    = errors.New("nothing to copy")
	ErrUnknownWallet    = errors.New("unknown wallet")
	ErrTransferInFlight = errors.New(constants.TransferInFlightText)
)

const connectTimeout = 30 * time.Second

type Options struct {
	Session    SessionProvider
	Connector  SmartWalletConnector
	Chains     ChainSwitcher
	Balances   BalanceSource
	Clipboard  Clipboard
	Tokens     TokenTable
	Appearance Appearance

	// CopyFeedbackDelay defaults to constants.CopyFeedbackDelay.
	CopyFeedbackDelay time.Duration
}

type formState struct {
	message   string
	amount    string
	recipient string

	errorMessage string
	loading      bool

	signedMessage   string
	signedExpanded  bool
	copiedWallet    assets.Kind
	copiedSigned    bool
	lastTxHash      common.Hash
	walletCopyGen   uint64
	signedCopyGen   uint64
	walletCopyTimer *time.Timer
	signedCopyTimer *time.Timer
}

// Controller owns the page state and turns user actions into collaborator calls.
type Controller struct {
	opts Options

	mu         sync.Mutex
	form       formState
	embedded   common.Address
	smart      SmartWallet
	accountGen uint64

	// trackMu orders balance Track calls between login sync and logout.
	trackMu sync.Mutex

	subsMu sync.Mutex
	subs   map[int]func()
	nextID int

	unsubscribeSession func()
}

func NewController(opts Options) (*Controller, error) {
	switch {
	case opts.Session == nil:
		return nil, errors.New("view: session provider is nil")
	case opts.Connector == nil:
		return nil, errors.New("view: smart wallet connector is nil")
	case opts.Chains == nil:
		return nil, errors.New("view: chain switcher is nil")
	case opts.Balances == nil:
		return nil, errors.New("view: balance source is nil")
	case opts.Clipboard == nil:
		return nil, errors.New("view: clipboard is nil")
	case opts.Tokens == nil:
		return nil, errors.New("view: token table is nil")
	}
	if opts.CopyFeedbackDelay <= 0 {
		opts.CopyFeedbackDelay = constants.CopyFeedbackDelay
	}

	c := &Controller{opts: opts, subs: map[int]func(){}}
	c.unsubscribeSession = opts.Session.Subscribe(c.onSessionEvent)

	if st := opts.Session.State(); st.Authenticated {
		c.syncAccount(context.Background(), st.User)
	}
	return c, nil
}

// Close detaches from the session and stops pending copy timers.
func (c *Controller) Close() {
	if c.unsubscribeSession != nil {
		c.unsubscribeSession()
	}
	c.mu.Lock()
	stopTimer(c.form.walletCopyTimer)
	stopTimer(c.form.signedCopyTimer)
	c.mu.Unlock()
}

// OnChange registers fn to run after every state change. The returned func removes it.
func (c *Controller) OnChange(fn func()) func() {
	c.subsMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subsMu.Unlock()

	return func() {
		c.subsMu.Lock()
		delete(c.subs, id)
		c.subsMu.Unlock()
	}
}

func (c *Controller) notify() {
	c.subsMu.Lock()
	fns := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subsMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (c *Controller) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventLogin, session.EventAccountChanged:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		c.syncAccount(ctx, ev.User)
	case session.EventLogout:
		c.clearAccount()
	}
}

// syncAccount mirrors the embedded address and connects the smart wallet it owns.
// A logout while Connect is in flight discards the result.
func (c *Controller) syncAccount(ctx context.Context, user *session.User) {
	if user == nil {
		return
	}

	c.mu.Lock()
	gen := c.accountGen
	c.embedded = user.EmbeddedAddress
	needsSmart := c.smart == nil
	c.mu.Unlock()

	owner := c.opts.Session.Wallet()
	var smart SmartWallet
	if needsSmart && owner != nil {
		var err error
		smart, err = c.opts.Connector.Connect(ctx, owner)
		if err != nil {
			log.Error("failed to connect smart wallet", "owner", owner.Address().Hex(), "error", err)
			smart = nil
		}
	}

	c.trackMu.Lock()
	defer c.trackMu.Unlock()

	c.mu.Lock()
	if gen != c.accountGen {
		c.mu.Unlock()
		log.Info("account changed during smart wallet connect, dropping result", "owner", user.EmbeddedAddress.Hex())
		return
	}
	if smart != nil {
		c.smart = smart
	}
	embedded, smartAddr := c.embedded, c.smartAddressLocked()
	c.mu.Unlock()

	c.opts.Balances.Track(embedded, smartAddr)
	c.notify()
}

func (c *Controller) clearAccount() {
	c.trackMu.Lock()
	defer c.trackMu.Unlock()

	c.mu.Lock()
	c.accountGen++
	c.embedded = common.Address{}
	c.smart = nil
	c.form.signedExpanded = false
	c.form.copiedWallet = ""
	c.form.copiedSigned = false
	c.form.lastTxHash = common.Hash{}
	stopTimer(c.form.walletCopyTimer)
	stopTimer(c.form.signedCopyTimer)
	c.mu.Unlock()

	c.opts.Balances.Track(common.Address{}, common.Address{})
	c.notify()
}

func (c *Controller) smartAddressLocked() common.Address {
	if c.smart == nil {
		return common.Address{}
	}
	return c.smart.Address()
}

// Login starts authentication and returns the session token.
func (c *Controller) Login(ctx context.Context, creds session.Credentials) (string, error) {
	if !c.opts.Session.State().Ready {
		return "", ErrNotReady
	}
	return c.opts.Session.Login(ctx, creds)
}

// Logout resets the form before ending the remote session.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.form.message = ""
	c.form.amount = ""
	c.form.recipient = ""
	c.form.signedMessage = ""
	c.form.errorMessage = ""
	c.mu.Unlock()
	c.notify()

	if err := c.opts.Session.Logout(ctx); err != nil {
		return errors.Wrap(err, "logout")
	}
	c.clearAccount()
	return nil
}

// FormUpdate carries the fields a client wants to change; nil fields are left alone.
type FormUpdate struct {
	Message   *string `json:"message,omitempty"`
	Amount    *string `json:"amount,omitempty"`
	Recipient *string `json:"recipient,omitempty"`
}

func (c *Controller) UpdateForm(u FormUpdate) {
	c.mu.Lock()
	if u.Message != nil {
		c.form.message = *u.Message
	}
	if u.Amount != nil {
		c.form.amount = *u.Amount
	}
	if u.Recipient != nil {
		c.form.recipient = *u.Recipient
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) SetMessage(v string) {
	c.UpdateForm(FormUpdate{Message: &v})
}

func (c *Controller) SetAmount(v string) {
	c.UpdateForm(FormUpdate{Amount: &v})
}

func (c *Controller) SetRecipient(v string) {
	c.UpdateForm(FormUpdate{Recipient: &v})
}

// SignMessage signs the current message with the smart wallet.
// Failures are reported through the signed message, not the error.
func (c *Controller) SignMessage(ctx context.Context) error {
	c.mu.Lock()
	message, smart := c.form.message, c.smart
	c.mu.Unlock()

	if !canSign(message) {
		return ErrNothingToSign
	}
	if smart == nil {
		log.Warn("sign requested without a smart account client")
		return ErrNoSmartWallet
	}

	signed, err := smart.SignMessage(ctx, message)
	if err != nil {
		log.Error("error signing message", "error", err)
		signed = constants.ErrSigningMessageText
	}

	c.mu.Lock()
	c.form.signedMessage = signed
	c.mu.Unlock()
	c.notify()
	return nil
}

// ToggleChain flips between the two supported networks. Switch failures are only logged.
func (c *Controller) ToggleChain(ctx context.Context) {
	c.mu.Lock()
	smart := c.smart
	c.mu.Unlock()

	if smart == nil {
		log.Warn("chain toggle requested without a smart account client")
		return
	}

	network, err := c.opts.Chains.Toggle(ctx)
	if err != nil {
		log.Error("failed to switch chain", "error", err)
		return
	}
	log.Info("switched chain", "network", network)

	c.opts.Balances.Invalidate()
	c.notify()
}

// ExecTransaction sends the form's USDC amount to the form's recipient through the smart wallet.
// Outcomes are reported through the form error; the returned error only covers refused requests.
func (c *Controller) ExecTransaction(ctx context.Context) error {
	c.mu.Lock()
	if c.form.loading {
		c.mu.Unlock()
		return ErrTransferInFlight
	}
	smart := c.smart
	if smart == nil {
		c.mu.Unlock()
		log.Warn("transfer requested without a smart account client")
		return ErrNoSmartWallet
	}
	c.form.loading = true
	c.form.errorMessage = ""
	amountText, recipientText := c.form.amount, c.form.recipient
	c.mu.Unlock()
	c.notify()

	errText, txHash := c.transfer(ctx, smart, amountText, recipientText)

	c.mu.Lock()
	c.form.loading = false
	c.form.errorMessage = errText
	if txHash != (common.Hash{}) {
		c.form.lastTxHash = txHash
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) transfer(ctx context.Context, smart SmartWallet, amountText, recipientText string) (string, common.Hash) {
	amount, err := utils.ParseUnits(amountText, constants.USDCDecimals)
	if err != nil || amount.Sign() <= 0 {
		return constants.InvalidUSDCAmountText, common.Hash{}
	}

	recipientText = strings.TrimSpace(recipientText)
	if !common.IsHexAddress(recipientText) {
		return constants.InvalidRecipientText, common.Hash{}
	}
	recipient := common.HexToAddress(recipientText)

	if balance := c.opts.Balances.Snapshot(assets.KindSmart).Token; balance != nil && amount.Cmp(balance) > 0 {
		return constants.InsufficientUSDCText, common.Hash{}
	}

	network, err := c.opts.Chains.ActiveNetwork()
	if err != nil {
		log.Error("transaction failed", "error", err)
		return constants.TransactionFailedText, common.Hash{}
	}
	token, err := c.opts.Tokens.USDCFor(network)
	if err != nil {
		log.Error("transaction failed", "network", network, "error", err)
		return constants.TransactionFailedText, common.Hash{}
	}
	data, err := assets.TransferCalldata(recipient, amount)
	if err != nil {
		log.Error("transaction failed", "error", err)
		return constants.TransactionFailedText, common.Hash{}
	}

	txHash, err := smart.SendTransaction(ctx, smartwallet.Call{To: token.Address, Value: new(big.Int), Data: data})
	if err != nil {
		log.Error("transaction failed", "network", network, "to", recipient.Hex(), "amount", amount.String(), "error", err)
		return constants.TransactionFailedText, common.Hash{}
	}
	log.Info("tx", "hash", txHash.Hex(), "network", network, "to", recipient.Hex(), "amount", amount.String())
	return "", txHash
}

// CopyWalletAddress copies the embedded or smart address and flags it for CopyFeedbackDelay.
func (c *Controller) CopyWalletAddress(ctx context.Context, kind assets.Kind) error {
	c.mu.Lock()
	var addr common.Address
	switch kind {
	case assets.KindEmbedded:
		addr = c.embedded
	case assets.KindSmart:
		addr = c.smartAddressLocked()
	default:
		c.mu.Unlock()
		return errors.Wrapf(ErrUnknownWallet, "%q", kind)
	}
	c.mu.Unlock()

	if addr == (common.Address{}) {
		return ErrNothingToCopy
	}
	if err := c.opts.Clipboard.WriteText(ctx, addr.Hex()); err != nil {
		return errors.Wrap(err, "write clipboard")
	}

	c.mu.Lock()
	c.form.copiedWallet = kind
	c.form.walletCopyGen++
	gen := c.form.walletCopyGen
	stopTimer(c.form.walletCopyTimer)
	c.form.walletCopyTimer = time.AfterFunc(c.opts.CopyFeedbackDelay, func() {
		c.mu.Lock()
		if c.form.walletCopyGen != gen {
			c.mu.Unlock()
			return
		}
		c.form.copiedWallet = ""
		c.mu.Unlock()
		c.notify()
	})
	c.mu.Unlock()
	c.notify()
	return nil
}

// CopySignedMessage copies the signed message and flags it for CopyFeedbackDelay.
func (c *Controller) CopySignedMessage(ctx context.Context) error {
	c.mu.Lock()
	signed := c.form.signedMessage
	c.mu.Unlock()

	if signed == "" {
		return ErrNothingToCopy
	}
	if err := c.opts.Clipboard.WriteText(ctx, signed); err != nil {
		return errors.Wrap(err, "write clipboard")
	}

	c.mu.Lock()
	c.form.copiedSigned = true
	c.form.signedCopyGen++
	gen := c.form.signedCopyGen
	stopTimer(c.form.signedCopyTimer)
	c.form.signedCopyTimer = time.AfterFunc(c.opts.CopyFeedbackDelay, func() {
		c.mu.Lock()
		if c.form.signedCopyGen != gen {
			c.mu.Unlock()
			return
		}
		c.form.copiedSigned = false
		c.mu.Unlock()
		c.notify()
	})
	c.mu.Unlock()
	c.notify()
	return nil
}

// BalancesChanged re-renders subscribers after the balance cache refreshed.
func (c *Controller) BalancesChanged() {
	c.notify()
}

func (c *Controller) ToggleSignedMessageExpanded() {
	c.mu.Lock()
	c.form.signedExpanded = !c.form.signedExpanded
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) CanSign() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return canSign(c.form.message)
}

func (c *Controller) CanSend() bool {
	balance := c.opts.Balances.Snapshot(assets.KindSmart).Token
	c.mu.Lock()
	defer c.mu.Unlock()
	return canSend(c.form.amount, c.form.recipient, balance, c.form.loading)
}

func (c *Controller) InsufficientHint() bool {
	balance := c.opts.Balances.Snapshot(assets.KindSmart).Token
	c.mu.Lock()
	defer c.mu.Unlock()
	return insufficient(c.form.amount, balance)
}

// State returns a snapshot of the page.
func (c *Controller) State() State {
	sess := c.opts.Session.State()

	st := State{
		Ready:         sess.Ready,
		Authenticated: sess.Authenticated,
		Appearance:    c.opts.Appearance,
	}
	if sess.User != nil {
		st.Email = sess.User.Email
	}

	if network, err := c.opts.Chains.ActiveNetwork(); err == nil {
		st.Network = network
		if chain, err := c.opts.Chains.ResolveNetworkByName(network); err == nil {
			st.DisplayName = chain.DisplayName
			st.ChainID = chain.ChainID
			st.Explorer = chain.Explorer
		}
	}

	embeddedSnap := c.opts.Balances.Snapshot(assets.KindEmbedded)
	smartSnap := c.opts.Balances.Snapshot(assets.KindSmart)

	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.form
	if c.embedded != (common.Address{}) {
		st.Embedded = &WalletView{
			Address: c.embedded.Hex(),
			Balance: BalanceDisplay(embeddedSnap),
			Copied:  f.copiedWallet == assets.KindEmbedded,
		}
	}
	if c.smart != nil {
		st.Smart = &WalletView{
			Address: c.smart.Address().Hex(),
			Balance: BalanceDisplay(smartSnap),
			Copied:  f.copiedWallet == assets.KindSmart,
		}
	}

	st.Message = f.message
	st.Amount = f.amount
	st.Recipient = f.recipient
	st.Error = f.errorMessage
	st.Loading = f.loading
	st.SignedMessage = f.signedMessage
	st.SignedMessageDisplay = SignedMessagePreview(f.signedMessage, f.signedExpanded)
	st.SignedMessageExpanded = f.signedExpanded
	st.CopiedWallet = string(f.copiedWallet)
	st.CopiedSignedMessage = f.copiedSigned
	st.CanSign = canSign(f.message)
	st.CanSend = canSend(f.amount, f.recipient, smartSnap.Token, f.loading)
	st.InsufficientBalance = insufficient(f.amount, smartSnap.Token)
	if f.lastTxHash != (common.Hash{}) {
		st.LastTxHash = f.lastTxHash.Hex()
	}
	return st
}

func stopTimer(t *time.Timer) {
	if t != nil {
		t.Stop()
	}
}
