// Command jh7100sbi is the StarFive JH7100 SBI firmware image. Each hart
// enters the same binary at the same address on reset and calls main with
// no arguments; mhartid, read directly off the CSR, is the only thing
// that tells one hart's invocation apart from another's (spec.md §4.6).
package main

import (
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/boot"
	"github.com/Luchangcheng2333/rustsbi-jh7100/internal/csr"
)

func main() {
	boot.Run(boot.DefaultConfig(), csr.ReadMhartid())
}
