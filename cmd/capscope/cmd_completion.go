package main

import (
	"fmt"
)

const completionUsage = `Usage: capscope completion <bash|zsh|fish>

Generate shell completion scripts.

Examples:
  # Bash
  capscope completion bash > /usr/local/etc/bash_completion.d/capscope
  # Zsh
  capscope completion zsh > "${fpath[1]}/_capscope"
  # Fish
  capscope completion fish > ~/.config/fish/completions/capscope.fish
`

func completionCmd(e *env, args []string) int {
	fs := e.newFlagSet("completion", completionUsage)
	if ok, code := parse(fs, args); !ok {
		return code
	}
	if fs.NArg() < 1 {
		fmt.Fprintf(e.stderr, "Error: shell name is required (bash, zsh, or fish)\n\n")
		fs.Usage()
		return exitError
	}

	switch shell := fs.Arg(0); shell {
	case "bash":
		fmt.Fprint(e.stdout, generateBashCompletion())
	case "zsh":
		fmt.Fprint(e.stdout, generateZshCompletion())
	case "fish":
		fmt.Fprint(e.stdout, generateFishCompletion())
	default:
		return e.fail("unsupported shell %q (use bash, zsh, or fish)", shell)
	}
	return exitOK
}

func generateBashCompletion() string {
	return `# bash completion for capscope                           -*- shell-script -*-

_capscope() {
    local cur prev words cword
    _init_completion || return

    local commands="explain diff tests serve insights completion version help"

    # Flags per subcommand
    local output_flags="--output --no-color"
    local explain_flags="${output_flags} --entry --save"
    local diff_flags="${output_flags} --left-entry --right-entry --left-label --right-label --save"
    local tests_flags="${output_flags} --entry --framework --schema --timing --write --copy --save"
    local serve_flags="--addr --db"
    local insights_flags="${output_flags} --kind --limit"

    local output_formats="text json yaml"
    local frameworks="vitest jest mocha playwright"
    local kinds="capture diff test"
    local insights_commands="list search show"
    local shells="bash zsh fish"

    if [[ ${cword} -eq 1 ]]; then
        COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
        return
    fi

    local command="${words[1]}"

    # Complete flag values
    case "${prev}" in
        --output)
            COMPREPLY=($(compgen -W "${output_formats}" -- "${cur}"))
            return
            ;;
        --framework)
            COMPREPLY=($(compgen -W "${frameworks}" -- "${cur}"))
            return
            ;;
        --kind)
            COMPREPLY=($(compgen -W "${kinds}" -- "${cur}"))
            return
            ;;
        --entry|--left-entry|--right-entry|--left-label|--right-label|--limit|--addr)
            # These take user-provided values, no completion
            return
            ;;
        --write|--db)
            _filedir
            return
            ;;
    esac

    # Complete flags for each subcommand
    case "${command}" in
        explain|diff|tests)
            if [[ "${cur}" == -* ]]; then
                local flags_var="${command}_flags"
                COMPREPLY=($(compgen -W "${!flags_var}" -- "${cur}"))
            else
                _filedir '@(json|yaml|yml|har)'
            fi
            ;;
        serve)
            COMPREPLY=($(compgen -W "${serve_flags}" -- "${cur}"))
            ;;
        insights)
            if [[ ${cword} -eq 2 ]]; then
                COMPREPLY=($(compgen -W "${insights_commands}" -- "${cur}"))
            elif [[ "${cur}" == -* ]]; then
                COMPREPLY=($(compgen -W "${insights_flags}" -- "${cur}"))
            fi
            ;;
        completion)
            COMPREPLY=($(compgen -W "${shells}" -- "${cur}"))
            ;;
    esac
}

complete -F _capscope capscope
`
}

func generateZshCompletion() string {
	return `#compdef capscope

# zsh completion for capscope

_capscope() {
    local -a commands
    commands=(
        'explain:Explain auth, tokens, cookies and security headers of a capture'
        'diff:Compare two captured responses'
        'tests:Generate API tests from a capture'
        'serve:Serve the analysis API over HTTP'
        'insights:List, search or show saved insights'
        'completion:Generate shell completion scripts'
        'version:Print version information'
        'help:Show help message'
    )

    local -a output_args
    output_args=(
        '--output[Output format]:format:(text json yaml)'
        '--no-color[Disable colored output]'
    )

    _arguments -C \
        '1:command:->command' \
        '*::arg:->args'

    case $state in
        command)
            _describe -t commands 'capscope commands' commands
            ;;
        args)
            case $words[1] in
                explain)
                    _arguments $output_args \
                        '--entry[Index of the exchange to use]:index:' \
                        '--save[Save the explanation as an insight]' \
                        '*:capture file:_files -g "*.(json|yaml|yml|har)"'
                    ;;
                diff)
                    _arguments $output_args \
                        '--left-entry[Exchange index in the left file]:index:' \
                        '--right-entry[Exchange index in the right file]:index:' \
                        '--left-label[Label for the left response]:label:' \
                        '--right-label[Label for the right response]:label:' \
                        '--save[Save the comparison as an insight]' \
                        '*:capture file:_files -g "*.(json|yaml|yml|har)"'
                    ;;
                tests)
                    _arguments $output_args \
                        '--entry[Index of the exchange to use]:index:' \
                        '--framework[Test frameworks]:framework:(vitest jest mocha playwright)' \
                        '--schema[Assert the shape of the JSON body]' \
                        '--timing[Assert a response time budget]' \
                        '--write[Write the generated code to a file]:file:_files' \
                        '--copy[Copy the generated code to the clipboard]' \
                        '--save[Save the generated tests as an insight]' \
                        '*:capture file:_files -g "*.(json|yaml|yml|har)"'
                    ;;
                serve)
                    _arguments \
                        '--addr[Listen address]:address:' \
                        '--db[Insight database path]:file:_files'
                    ;;
                insights)
                    _arguments $output_args \
                        '1:subcommand:(list search show)' \
                        '--kind[Insight kind]:kind:(capture diff test)' \
                        '--limit[Maximum number of insights]:limit:'
                    ;;
                completion)
                    _arguments \
                        '1:shell:(bash zsh fish)'
                    ;;
            esac
            ;;
    esac
}

_capscope "$@"
`
}

func generateFishCompletion() string {
	return `# fish completion for capscope

# Disable file completions by default
complete -c capscope -f

# Subcommands
complete -c capscope -n '__fish_use_subcommand' -a explain -d 'Explain auth, tokens, cookies and security headers of a capture'
complete -c capscope -n '__fish_use_subcommand' -a diff -d 'Compare two captured responses'
complete -c capscope -n '__fish_use_subcommand' -a tests -d 'Generate API tests from a capture'
complete -c capscope -n '__fish_use_subcommand' -a serve -d 'Serve the analysis API over HTTP'
complete -c capscope -n '__fish_use_subcommand' -a insights -d 'List, search or show saved insights'
complete -c capscope -n '__fish_use_subcommand' -a completion -d 'Generate shell completion scripts'
complete -c capscope -n '__fish_use_subcommand' -a version -d 'Print version information'
complete -c capscope -n '__fish_use_subcommand' -a help -d 'Show help message'

# shared output flags
complete -c capscope -n '__fish_seen_subcommand_from explain diff tests insights' -l output -d 'Output format' -ra 'text json yaml'
complete -c capscope -n '__fish_seen_subcommand_from explain diff tests insights' -l no-color -d 'Disable colored output'
complete -c capscope -n '__fish_seen_subcommand_from explain diff tests' -l save -d 'Save the result as an insight'
complete -c capscope -n '__fish_seen_subcommand_from explain diff tests' -F

# explain and tests flags
complete -c capscope -n '__fish_seen_subcommand_from explain tests' -l entry -d 'Index of the exchange to use' -r
complete -c capscope -n '__fish_seen_subcommand_from tests' -l framework -d 'Test frameworks' -ra 'vitest jest mocha playwright'
complete -c capscope -n '__fish_seen_subcommand_from tests' -l schema -d 'Assert the shape of the JSON body'
complete -c capscope -n '__fish_seen_subcommand_from tests' -l timing -d 'Assert a response time budget'
complete -c capscope -n '__fish_seen_subcommand_from tests' -l write -d 'Write the generated code to a file' -rF
complete -c capscope -n '__fish_seen_subcommand_from tests' -l copy -d 'Copy the generated code to the clipboard'

# diff flags
complete -c capscope -n '__fish_seen_subcommand_from diff' -l left-entry -d 'Exchange index in the left file' -r
complete -c capscope -n '__fish_seen_subcommand_from diff' -l right-entry -d 'Exchange index in the right file' -r
complete -c capscope -n '__fish_seen_subcommand_from diff' -l left-label -d 'Label for the left response' -r
complete -c capscope -n '__fish_seen_subcommand_from diff' -l right-label -d 'Label for the right response' -r

# serve flags
complete -c capscope -n '__fish_seen_subcommand_from serve' -l addr -d 'Listen address' -r
complete -c capscope -n '__fish_seen_subcommand_from serve' -l db -d 'Insight database path' -rF

# insights
complete -c capscope -n '__fish_seen_subcommand_from insights; and not __fish_seen_subcommand_from list search show' -a 'list search show'
complete -c capscope -n '__fish_seen_subcommand_from insights' -l kind -d 'Insight kind' -ra 'capture diff test'
complete -c capscope -n '__fish_seen_subcommand_from insights' -l limit -d 'Maximum number of insights' -r

# completion - shell names
complete -c capscope -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish' -d 'Shell type'
`
}
