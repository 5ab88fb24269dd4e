package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/chirper-ai/contracts-sub002/contracts/skillaccount"
	"github.com/chirper-ai/contracts-sub002/contracts/skilltoken"
	"github.com/chirper-ai/contracts-sub002/ledger"
	"github.com/chirper-ai/contracts-sub002/registry"
	"github.com/chirper-ai/contracts-sub002/txclient"
)

type config struct {
	RPCURL         string
	ChainID        int64
	PrivateKey     string
	Registry       string
	Account        string
	Implementation string
	TokenContract  string
	TokenID        string
	Salt           string
	InitData       string
	InitArgs       string
	Deadline       int64
	GasFeeCap      int64
	GasTipCap      int64
	TimeoutSeconds int
}

type report struct {
	Account        string `json:"account"`
	Exists         *bool  `json:"exists,omitempty"`
	TxHash         string `json:"tx_hash,omitempty"`
	Implementation string `json:"implementation,omitempty"`
	ChainID        string `json:"chain_id,omitempty"`
	TokenContract  string `json:"token_contract,omitempty"`
	TokenID        string `json:"token_id,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}
	command := os.Args[1]
	switch command {
	case "predict", "exists", "resolve", "create":
	default:
		printUsage()
		os.Exit(2)
	}

	cfg, err := parseFlags(command, os.Args[2:])
	if err != nil {
		exitErr(err)
	}

	if err := run(command, cfg); err != nil {
		exitErr(err)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  skillreg predict --registry <addr> --implementation <addr> --chain-id <id> --token-contract <addr> --token-id <n> --salt <v>")
	fmt.Println("  skillreg exists  (predict flags plus --rpc-url)")
	fmt.Println("  skillreg resolve --registry <addr> --account <addr> --rpc-url <url>")
	fmt.Println("  skillreg create  (predict flags plus --rpc-url --private-key [--init-data <hex> | --init-args <hex>] [--deadline <unix>])")
	fmt.Println()
	fmt.Println("Core flags/env: --rpc-url(RPC_URL) --chain-id(CHAIN_ID) --private-key(PRIVATE_KEY) --registry(REGISTRY_ADDRESS)")
	fmt.Println("When --implementation is omitted, exists/create resolve it from the token contract's accountImplementation()")
}

func parseFlags(command string, args []string) (config, error) {
	_ = godotenv.Load()

	cfg := config{
		RPCURL:         envOr("RPC_URL", ""),
		ChainID:        envInt64("CHAIN_ID", 0),
		PrivateKey:     envOr("PRIVATE_KEY", ""),
		Registry:       envOr("REGISTRY_ADDRESS", ""),
		Implementation: envOr("IMPLEMENTATION_ADDRESS", ""),
		TokenContract:  envOr("TOKEN_CONTRACT", ""),
		TokenID:        envOr("TOKEN_ID", ""),
		Salt:           envOr("SALT", "0"),
		InitData:       envOr("INIT_DATA", ""),
		InitArgs:       envOr("INIT_ARGS", ""),
		Deadline:       envInt64("DEADLINE", 0),
		GasFeeCap:      envInt64("GAS_FEE_CAP", 2_000_000_000),
		GasTipCap:      envInt64("GAS_TIP_CAP", 1_000_000_000),
		TimeoutSeconds: 600,
	}

	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	fs.StringVar(&cfg.RPCURL, "rpc-url", cfg.RPCURL, "json-rpc endpoint")
	fs.Int64Var(&cfg.ChainID, "chain-id", cfg.ChainID, "chain id of the reference token")
	fs.StringVar(&cfg.PrivateKey, "private-key", cfg.PrivateKey, "hex private key for create")
	fs.StringVar(&cfg.Registry, "registry", cfg.Registry, "registry contract address")
	fs.StringVar(&cfg.Implementation, "implementation", cfg.Implementation, "account implementation address")
	fs.StringVar(&cfg.TokenContract, "token-contract", cfg.TokenContract, "reference token contract address")
	fs.StringVar(&cfg.TokenID, "token-id", cfg.TokenID, "reference token id")
	fs.StringVar(&cfg.Salt, "salt", cfg.Salt, "salt (0x-hex or decimal)")
	fs.StringVar(&cfg.InitData, "init-data", cfg.InitData, "hex calldata for post-deploy initialization")
	fs.StringVar(&cfg.InitArgs, "init-args", cfg.InitArgs, "hex payload wrapped as initialize(bytes) calldata")
	fs.Int64Var(&cfg.Deadline, "deadline", cfg.Deadline, "unix deadline for create, 0 for none")
	fs.Int64Var(&cfg.GasFeeCap, "gas-fee-cap", cfg.GasFeeCap, "max fee per gas (wei)")
	fs.Int64Var(&cfg.GasTipCap, "gas-tip-cap", cfg.GasTipCap, "max priority fee per gas (wei)")
	fs.IntVar(&cfg.TimeoutSeconds, "timeout", cfg.TimeoutSeconds, "overall timeout in seconds")

	fs.StringVar(&cfg.Account, "account", cfg.Account, "account address (resolve only)")

	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func run(command string, cfg config) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	switch command {
	case "predict":
		return runPredict(cfg)
	case "exists":
		return runExists(ctx, cfg)
	case "resolve":
		return runResolve(ctx, cfg)
	case "create":
		return runCreate(ctx, cfg)
	}
	return fmt.Errorf("unknown command %q", command)
}

func runPredict(cfg config) error {
	reg, params, err := localRegistry(cfg, nil)
	if err != nil {
		return err
	}
	addr, err := reg.PredictAddress(params)
	if err != nil {
		return err
	}
	return printReport(report{Account: addr.Hex()})
}

func runExists(ctx context.Context, cfg config) error {
	rpc, err := ledger.DialRPC(cfg.RPCURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	if cfg.Implementation == "" {
		if cfg.Implementation, err = resolveImplementation(ctx, cfg, rpc); err != nil {
			return err
		}
	}

	reg, params, err := localRegistry(cfg, rpc)
	if err != nil {
		return err
	}
	exists, addr, err := reg.Exists(ctx, params)
	if err != nil {
		return err
	}
	return printReport(report{Account: addr.Hex(), Exists: &exists})
}

func runResolve(ctx context.Context, cfg config) error {
	if cfg.Account == "" {
		return errors.New("--account is required for resolve")
	}
	rpc, err := ledger.DialRPC(cfg.RPCURL)
	if err != nil {
		return err
	}
	defer rpc.Close()

	registryAddr, err := parseAddress("registry", cfg.Registry)
	if err != nil {
		return err
	}
	accountAddr, err := parseAddress("account", cfg.Account)
	if err != nil {
		return err
	}

	reg := registry.New(registryAddr, rpc)
	impl, err := reg.GetImplementation(ctx, accountAddr)
	if err != nil {
		return err
	}
	token, err := reg.GetTokenForAccount(ctx, accountAddr)
	if err != nil {
		return err
	}
	return printReport(report{
		Account:        accountAddr.Hex(),
		Implementation: impl.Hex(),
		ChainID:        token.ChainID.String(),
		TokenContract:  token.Contract.Hex(),
		TokenID:        token.ID.String(),
	})
}

func runCreate(ctx context.Context, cfg config) error {
	log, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if cfg.Implementation == "" {
		rpc, err := ledger.DialRPC(cfg.RPCURL)
		if err != nil {
			return err
		}
		cfg.Implementation, err = resolveImplementation(ctx, cfg, rpc)
		rpc.Close()
		if err != nil {
			return err
		}
		log.Info("implementation resolved from token contract",
			zap.String("implementation", cfg.Implementation),
		)
	}

	reg, params, err := localRegistry(cfg, nil)
	if err != nil {
		return err
	}
	predicted, err := reg.PredictAddress(params)
	if err != nil {
		return err
	}
	if cfg.Deadline > 0 && time.Now().Unix() > cfg.Deadline {
		return registry.ErrDeadlineExceeded
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return fmt.Errorf("parse private key: %w", err)
	}

	client, err := txclient.NewClient(cfg.RPCURL, cfg.ChainID, key,
		big.NewInt(cfg.GasFeeCap), big.NewInt(cfg.GasTipCap))
	if err != nil {
		return err
	}
	defer client.Close()

	initData, err := buildInitData(cfg)
	if err != nil {
		return err
	}

	log.Info("submitting createAccount",
		zap.String("registry", reg.Address().Hex()),
		zap.String("predicted", predicted.Hex()),
		zap.String("sender", client.Address().Hex()),
	)

	txHash, err := client.CreateAccount(ctx, reg.Address(), params, initData, txclient.CreateAccountGasLimit)
	if err != nil {
		return err
	}
	receipt, err := client.WaitForReceipt(ctx, txHash)
	if err != nil {
		return err
	}

	created, err := txclient.AccountFromReceipt(receipt)
	if err != nil {
		// Idempotent path: no event means the account already existed.
		log.Info("no creation event, account pre-existing", zap.String("account", predicted.Hex()))
		created = predicted
	}

	return printReport(report{Account: created.Hex(), TxHash: txHash.Hex()})
}

func localRegistry(cfg config, l ledger.Ledger) (*registry.Registry, registry.CreationParams, error) {
	registryAddr, err := parseAddress("registry", cfg.Registry)
	if err != nil {
		return nil, registry.CreationParams{}, err
	}
	implementation, err := parseAddress("implementation", cfg.Implementation)
	if err != nil {
		return nil, registry.CreationParams{}, err
	}
	tokenContract, err := parseAddress("token-contract", cfg.TokenContract)
	if err != nil {
		return nil, registry.CreationParams{}, err
	}
	tokenID, err := parseBig("token-id", cfg.TokenID)
	if err != nil {
		return nil, registry.CreationParams{}, err
	}
	salt, err := parseSalt(cfg.Salt)
	if err != nil {
		return nil, registry.CreationParams{}, err
	}

	params := registry.CreationParams{
		Implementation: implementation,
		ChainID:        big.NewInt(cfg.ChainID),
		TokenContract:  tokenContract,
		TokenID:        tokenID,
		Salt:           salt,
	}
	if l == nil {
		l = ledger.NewMemory()
	}
	return registry.New(registryAddr, l), params, nil
}

func parseAddress(name, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("invalid %s address: %q", name, value)
	}
	return common.HexToAddress(value), nil
}

func parseBig(name, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", name)
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s: %q", name, value)
	}
	return n, nil
}

// resolveImplementation asks the reference token contract which account
// implementation its bound accounts delegate to.
func resolveImplementation(ctx context.Context, cfg config, rpc *ledger.RPC) (string, error) {
	tokenContract, err := parseAddress("token-contract", cfg.TokenContract)
	if err != nil {
		return "", err
	}
	impl, err := skilltoken.AccountImplementation(ctx, rpc.Client(), tokenContract)
	if err != nil {
		return "", fmt.Errorf("resolve implementation: %w", err)
	}
	return impl.Hex(), nil
}

// buildInitData returns the initialization calldata for create: --init-data
// passes raw calldata through, --init-args wraps a payload in
// initialize(bytes).
func buildInitData(cfg config) ([]byte, error) {
	if cfg.InitData != "" && cfg.InitArgs != "" {
		return nil, errors.New("--init-data and --init-args are mutually exclusive")
	}
	if cfg.InitArgs != "" {
		payload, err := parseHexData(cfg.InitArgs)
		if err != nil {
			return nil, err
		}
		return skillaccount.EncodeInit(payload)
	}
	return parseHexData(cfg.InitData)
}

func parseSalt(value string) (common.Hash, error) {
	if strings.HasPrefix(value, "0x") {
		b, err := hexutil.Decode(value)
		if err != nil {
			return common.Hash{}, fmt.Errorf("invalid salt %q: %w", value, err)
		}
		if len(b) > common.HashLength {
			return common.Hash{}, fmt.Errorf("invalid salt %q: longer than 32 bytes", value)
		}
		return common.BytesToHash(b), nil
	}
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return common.Hash{}, fmt.Errorf("invalid salt: %q", value)
	}
	if n.Sign() < 0 || n.BitLen() > 256 {
		return common.Hash{}, fmt.Errorf("invalid salt %q: out of 256-bit range", value)
	}
	return common.BigToHash(n), nil
}

func parseHexData(value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	if !strings.HasPrefix(value, "0x") {
		value = "0x" + value
	}
	data := common.FromHex(value)
	if len(data) == 0 && value != "0x" {
		return nil, fmt.Errorf("invalid init data: %q", value)
	}
	return data, nil
}

func printReport(r report) error {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
