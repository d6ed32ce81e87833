package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/devnet"
	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func (c config) devnet() (devnet.Config, error) {
	owner, err := parseAddress("owner", c.Owner)
	if err != nil {
		return devnet.Config{}, err
	}
	signer, err := parseAddress("allowed signer", c.AllowedSigner)
	if err != nil {
		return devnet.Config{}, err
	}
	fee, err := model.ParseFeePercent(c.FeePercent)
	if err != nil {
		return devnet.Config{}, err
	}
	liquidity, err := parseAmount("satellite liquidity", c.Liquidity)
	if err != nil {
		return devnet.Config{}, err
	}
	armFloat, err := parseAmount("arm float", c.ArmFloat)
	if err != nil {
		return devnet.Config{}, err
	}
	poolDepth, err := parseAmount("pool depth", c.PoolDepth)
	if err != nil {
		return devnet.Config{}, err
	}

	out := devnet.Config{
		HubDomain:     model.Domain(c.HubDomain),
		ChainID:       c.ChainID,
		Owner:         owner,
		AllowedSigner: signer,
		Fee:           fee,
		FeeDelay:      c.FeeDelay,
		MaxAttempts:   c.MaxAttempts,
	}
	seen := map[model.Domain]struct{}{out.HubDomain: {}}
	for _, raw := range c.Satellites {
		sc, err := parseSatellite(raw)
		if err != nil {
			return devnet.Config{}, err
		}
		if _, ok := seen[sc.Domain]; ok {
			return devnet.Config{}, fmt.Errorf("domain %d configured twice", sc.Domain)
		}
		seen[sc.Domain] = struct{}{}
		sc.Liquidity = liquidity
		sc.ArmFloat = armFloat
		sc.PoolDepth = poolDepth
		out.Satellites = append(out.Satellites, sc)
	}
	return out, nil
}

// parseSatellite reads "domain" or "domain:payout-token".
func parseSatellite(s string) (devnet.SatelliteConfig, error) {
	domainPart, tokenPart, hasToken := strings.Cut(strings.TrimSpace(s), ":")
	domain, err := strconv.ParseUint(domainPart, 10, 32)
	if err != nil || domain == 0 {
		return devnet.SatelliteConfig{}, fmt.Errorf("satellite %q: invalid domain", s)
	}
	sc := devnet.SatelliteConfig{Domain: model.Domain(domain), PayoutToken: model.NativeToken}
	if hasToken {
		token, err := parseAddress("payout token", tokenPart)
		if err != nil {
			return devnet.SatelliteConfig{}, fmt.Errorf("satellite %q: %w", s, err)
		}
		sc.PayoutToken = token
	}
	return sc, nil
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s %q is not a hex address", name, s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(name, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}
