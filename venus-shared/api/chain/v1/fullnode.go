package v1

type FullNode interface {
	ICommon
	IChainInfo
	IMessagePool
}
