// Package wasmmem carries Borsh values across the host/guest boundary of a
// WebAssembly module running under wazero.
//
// Writer and Reader adapt a range of guest linear memory to the io sink and
// source the codec works with. Bump and Realloc are allocators over guest
// memory; both implement borsh.Mapper, so codec.EncodeToBuffer writes the
// encoding straight into the guest. Store and Load combine the two.
//
//	bump := wasmmem.NewBump(mod.Memory(), heapBase)
//	ptr, n, err := wasmmem.Store(bump, msgCodec, msg)
//	// pass ptr, n to the guest
//	reply, err := wasmmem.Load(mod.Memory(), rptr, rlen, alloc.NewHeap(), replyCodec)
package wasmmem
