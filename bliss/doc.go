// Package bliss implements the private-key core of the BLISS lattice
// signature scheme (variants I, III and IV) over the cyclotomic ring
// Rq = Zq[x]/(x^n+1). It provides the parameter-set registry, modular and
// negacyclic polynomial arithmetic, the sparse secret sampler, the discrete
// Gaussian sampler with its Bernoulli rejection primitives, and the signing
// utilities (round-and-drop, challenge extraction, norm checks).
//
// Key generation, signing and verification drivers live in bliss/keys;
// the MGF1 bit spender feeding the samplers lives in bliss/mgf1.
package bliss
