package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/oracle"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
)

type config struct {
	Key          string `long:"key" env:"SHIPPING_SIGNER_KEY" description:"hex secp256k1 private key of the shipping oracle" required:"true"`
	ChainID      uint64 `long:"chain-id" env:"SHIPPING_SIGNER_CHAIN_ID" description:"chain id of the hub" default:"31337"`
	ProductID    uint64 `long:"product-id" description:"product id" required:"true"`
	Buyer        string `long:"buyer" description:"buyer address" required:"true"`
	ShippingCost string `long:"shipping-cost" description:"shipping cost in the product token's smallest unit" required:"true"`
	Nonce        uint64 `long:"nonce" description:"buyer nonce on the hub" default:"0"`
}

func main() {
	cfg := config{}

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()

	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("failed to parse flags", zap.Error(err))
	}

	signer, sig, err := sign(cfg)
	if err != nil {
		logger.Fatal("failed to sign shipping quote", zap.Error(err))
	}
	logger.Info("shipping quote signed", zap.String("signer", signer.Hex()), zap.Uint64("product_id", cfg.ProductID))
	fmt.Println(hexutil.Encode(sig))
}

func sign(cfg config) (common.Address, []byte, error) {
	signer, err := oracle.NewSignerFromHex(cfg.Key, cfg.ChainID)
	if err != nil {
		return common.Address{}, nil, err
	}
	if !common.IsHexAddress(cfg.Buyer) {
		return common.Address{}, nil, fmt.Errorf("buyer %q is not a hex address", cfg.Buyer)
	}
	cost, err := uint256.FromDecimal(cfg.ShippingCost)
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("parse shipping cost: %w", err)
	}
	sig, err := signer.Sign(oracle.Quote{
		ProductID:    model.ProductID(cfg.ProductID),
		Buyer:        common.HexToAddress(cfg.Buyer),
		ShippingCost: cost,
		Nonce:        cfg.Nonce,
	})
	if err != nil {
		return common.Address{}, nil, err
	}
	return signer.Address(), sig, nil
}
