package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_lockkv() {
    local cur prev words cword
    _init_completion || return

    local commands="set get rm ls status inspect compact serve help completion"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    local cmd="${words[1]}"
    case "$cmd" in
        get|rm|inspect)
            # Complete with stored keys
            local keys
            keys=$(lockkv ls -q 2>/dev/null)
            COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            ;;
        set)
            if [[ $cword -eq 2 ]]; then
                local keys
                keys=$(lockkv ls -q 2>/dev/null)
                COMPREPLY=($(compgen -W "$keys" -- "$cur"))
            fi
            ;;
        ls|status)
            COMPREPLY=($(compgen -W "-q --quiet" -- "$cur"))
            ;;
        serve)
            COMPREPLY=($(compgen -W "--addr" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _lockkv lockkv
`

const zshCompletion = `#compdef lockkv

_lockkv() {
    local -a commands
    commands=(
        'set:Encrypt and store a value'
        'get:Decrypt and print a value'
        'rm:Remove values and their keys'
        'ls:List stored keys'
        'status:List stored keys'
        'inspect:Show where a key is stored'
        'compact:Compact the store to reclaim disk space'
        'serve:Serve the store over HTTP'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'lockkv commands' commands
            ;;
        args)
            case "${words[2]}" in
                get|rm|inspect)
                    _arguments '*:stored key:_lockkv_keys'
                    ;;
                set)
                    _arguments '1:stored key:_lockkv_keys' '2:value:'
                    ;;
                ls|status)
                    _arguments '-q[Print keys only]' '--quiet[Print keys only]'
                    ;;
                serve)
                    _arguments '--addr[Listen address]:address:'
                    ;;
                help)
                    _describe -t commands 'lockkv commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_lockkv_keys() {
    local -a keys
    keys=(${(f)"$(lockkv ls -q 2>/dev/null)"})
    _describe -t keys 'stored keys' keys
}

_lockkv "$@"
`

const fishCompletion = `# lockkv fish completions

set -l commands set get rm ls status inspect compact serve help completion

complete -c lockkv -f

# Commands
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a set -d 'Encrypt and store a value'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a get -d 'Decrypt and print a value'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a rm -d 'Remove values'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a ls -d 'List stored keys'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a status -d 'List stored keys'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a inspect -d 'Show where a key is stored'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact store'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a serve -d 'Serve over HTTP'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c lockkv -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# stored keys
complete -c lockkv -n "__fish_seen_subcommand_from get set rm inspect" -a "(lockkv ls -q 2>/dev/null)"

# ls flags
complete -c lockkv -n "__fish_seen_subcommand_from ls status" -s q -l quiet -d 'Print keys only'

# serve flags
complete -c lockkv -n "__fish_seen_subcommand_from serve" -l addr -d 'Listen address'

# help completions
complete -c lockkv -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c lockkv -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
