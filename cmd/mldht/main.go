// Command mldht builds a local routing table identity and shows what a
// ping query to each given bootstrap address would look like on the
// wire, without opening a socket.
package main

import (
	"crypto/sha1"
	"flag"
	"log"
	"net"
	"strings"

	"github.com/dhtcore/mldht/kademlia"
	"github.com/dhtcore/mldht/krpc"
)

func main() {
	seed := flag.String("id-seed", "mldht-demo-node", "string hashed into the local node's 160-bit ID")
	listen := flag.String("listen", "127.0.0.1:7891", "local host:port this node would bind to")
	bootstrap := flag.String("bootstrap", "", "comma-separated host:port list of nodes to address a ping at")
	flag.Parse()

	selfID := sha1.Sum([]byte(*seed))
	selfAddr, err := net.ResolveUDPAddr("udp", *listen)
	if err != nil {
		log.Fatal(err)
	}

	key, err := kademlia.NewKey(selfID[:])
	if err != nil {
		log.Fatal(err)
	}
	table := kademlia.New(key, selfAddr)
	log.Printf("routing table for %s ready, %d contacts", key, table.Count())

	if *bootstrap == "" {
		return
	}

	for _, host := range strings.Split(*bootstrap, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		addr, err := net.ResolveUDPAddr("udp", host)
		if err != nil {
			log.Printf("skipping %s: %v", host, err)
			continue
		}

		msg := &krpc.Query{
			TID:  []byte("aa"),
			Args: krpc.PingArgs{ID: key[:]},
		}
		wire, err := krpc.Encode(msg)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("ping for %s: %x", addr, wire)
	}
}
