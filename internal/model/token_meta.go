package model

// TokenMeta captures immutable ERC20 metadata, cached per process. Symbol and
// Name may be empty for tokens that revert on those calls; Decimals is always
// read successfully or the whole fetch fails.
type TokenMeta struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
}
